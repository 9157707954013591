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
	"fmt"
	"os"

	"github.com/golang/glog"
	"github.com/mitchellh/go-homedir"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/notargets/femkernel/InputParameters"
	"github.com/notargets/femkernel/model_problems/Periodic2D"
)

const exampleFile = `
########################################
Title: "Periodic Composite"
Nx: 5
Ny: 5
ElementSize: 1.
Shear: 0.1
Tolerance: 1.e-5
MaxIterations: 20
Solver: DenseLU # Can be "CG"
Materials:
  Hard:
    K: 10.
    G: 1.
    Elements: [0, 1, 5, 6]
  Soft: # No element list: all remaining elements
    K: 10.
    G: 0.1
########################################
`

// PeriodicCmd represents the periodic command
var PeriodicCmd = &cobra.Command{
	Use:   "periodic",
	Short: "Periodic unit cell under a prescribed macroscopic shear",
	Long: `Solves the static equilibrium of a periodic Quad4 unit cell, the macroscopic
deformation is prescribed through the control nodes. Without an input file the
default two phase composite is solved.` + "\nExample File:" + exampleFile,
	Run: func(cmd *cobra.Command, args []string) {
		var (
			err    error
			ICFile string
		)
		if ICFile, err = cmd.Flags().GetString("inputConditionsFile"); err != nil {
			panic(err)
		}
		if err = RunPeriodic(ICFile, viper.GetBool("verbose"), viper.GetInt("procLimit")); err != nil {
			glog.Errorf("periodic: %v", err)
			fmt.Printf("error: %s\n", err.Error())
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(PeriodicCmd)
	PeriodicCmd.Flags().StringP("inputConditionsFile", "I", "", "YAML file for input parameters like:\n\t- Nx, Ny\n\t- Shear\n\t- Materials")
	PeriodicCmd.Flags().IntP("procLimit", "p", 0, "maximum number of go routines, 0 uses one per CPU")
	if err := viper.BindPFlag("procLimit", PeriodicCmd.Flags().Lookup("procLimit")); err != nil {
		panic(err)
	}
}

func processInput(ICFile string) (ip *InputParameters.InputParametersPeriodic, err error) {
	ip = InputParameters.NewInputParametersPeriodic()
	if len(ICFile) == 0 {
		return
	}
	if ICFile, err = homedir.Expand(ICFile); err != nil {
		return nil, err
	}
	var data []byte
	if data, err = os.ReadFile(ICFile); err != nil {
		return nil, err
	}
	if err = ip.Parse(data); err != nil {
		return nil, errors.Wrapf(err, "parsing %s", ICFile)
	}
	return
}

// RunPeriodic solves the unit cell of the input file, or the default one, and prints the macroscopic stress.
func RunPeriodic(ICFile string, verbose bool, procLimit int) (err error) {
	var (
		ip *InputParameters.InputParametersPeriodic
		c  *Periodic2D.Periodic
	)
	if ip, err = processInput(ICFile); err != nil {
		return
	}
	if procLimit > 0 {
		ip.ProcLimit = procLimit
	}
	if c, err = Periodic2D.NewPeriodic(ip, verbose); err != nil {
		return
	}
	if err = c.Solve(); err != nil {
		return
	}
	_, SigMacro, err := c.AverageStress()
	if err != nil {
		return
	}
	fmt.Printf("Macroscopic stress = %v\n", SigMacro.Data)
	return
}
