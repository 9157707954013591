/*
Copyright © 2020 NAME HERE <EMAIL ADDRESS>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	goflag "flag"
	"fmt"
	"os"
	"runtime"

	"github.com/mitchellh/go-homedir"
	"github.com/pkg/profile"
	"github.com/spf13/cobra"
	flag "github.com/spf13/pflag"
	"github.com/spf13/viper"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "femkernel",
	Short: "Finite element assembly kernel",
	Long: `Finite element assembly kernel: quadrature, nodal/DOF/element vector
conversions, partitioned and periodic (tied) systems.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		stopper = startProfile(viper.GetViper())
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		stopper.Stop()
	},
}

var stopper interface{ Stop() } = noOpStopper{}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	goflag.Parse()
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.femkernel.yaml)")
	rootCmd.PersistentFlags().String("profile_mode", "",
		"Enable profiling mode, one of [cpu, mem, mutex, block]")
	rootCmd.PersistentFlags().Int("block_rate", 0, "Block profiling rate. Must be used along with block profile_mode")
	rootCmd.PersistentFlags().Bool("verbose", false, "print the input and the iteration history")
	// glog flags, e.g. --v and --logtostderr
	flag.CommandLine.AddGoFlagSet(goflag.CommandLine)
	for _, name := range []string{"profile_mode", "block_rate", "verbose"} {
		if err := viper.BindPFlag(name, rootCmd.PersistentFlags().Lookup(name)); err != nil {
			panic(err)
		}
	}
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := homedir.Dir()
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
		viper.AddConfigPath(home)
		viper.SetConfigName(".femkernel")
	}
	viper.SetEnvPrefix("FEM")
	viper.AutomaticEnv()
	if err := viper.ReadInConfig(); err == nil {
		fmt.Println("Using config file:", viper.ConfigFileUsed())
	}
}

func startProfile(conf *viper.Viper) interface{ Stop() } {
	switch mode := conf.GetString("profile_mode"); mode {
	case "cpu":
		return profile.Start(profile.CPUProfile)
	case "mem":
		return profile.Start(profile.MemProfile)
	case "mutex":
		return profile.Start(profile.MutexProfile)
	case "block":
		runtime.SetBlockProfileRate(conf.GetInt("block_rate"))
		return profile.Start(profile.BlockProfile)
	case "":
		return noOpStopper{}
	default:
		fmt.Printf("Invalid profile mode: %q\n", mode)
		os.Exit(1)
		return noOpStopper{}
	}
}

type noOpStopper struct{}

func (noOpStopper) Stop() {}
