package InputParameters

import (
	"fmt"
	"sort"

	"github.com/ghodss/yaml"
)

// MaterialParameters assigns elastic moduli to a list of elements, an empty list means all remaining elements.
type MaterialParameters struct {
	K        float64 `json:"K"`
	G        float64 `json:"G"`
	Elements []int   `json:"Elements"`
}

// Parameters obtained from the YAML input file
type InputParametersPeriodic struct {
	Title         string                        `json:"Title"`
	Nx            int                           `json:"Nx"`
	Ny            int                           `json:"Ny"`
	ElementSize   float64                       `json:"ElementSize"`
	Shear         float64                       `json:"Shear"` // prescribed displacement of the first control node, y component
	Tolerance     float64                       `json:"Tolerance"`
	MaxIterations int                           `json:"MaxIterations"`
	Solver        string                        `json:"Solver"` // DenseLU or CG
	ProcLimit     int                           `json:"ProcLimit"`
	Materials     map[string]MaterialParameters `json:"Materials"`
}

// NewInputParametersPeriodic returns the defaults of the periodic homogenisation example.
func NewInputParametersPeriodic() *InputParametersPeriodic {
	return &InputParametersPeriodic{
		Title:         "Periodic",
		Nx:            5,
		Ny:            5,
		ElementSize:   1,
		Shear:         .1,
		Tolerance:     1e-5,
		MaxIterations: 20,
		Solver:        "DenseLU",
		Materials: map[string]MaterialParameters{
			"Hard": {K: 10, G: 1, Elements: []int{0, 1, 5, 6}},
			"Soft": {K: 10, G: .1},
		},
	}
}

// Parse overlays the YAML data on the current values, Materials are replaced as a whole.
func (ip *InputParametersPeriodic) Parse(data []byte) (err error) {
	materials := ip.Materials
	ip.Materials = nil
	if err = yaml.Unmarshal(data, ip); err != nil || ip.Materials == nil {
		ip.Materials = materials
	}
	return
}

// MaterialNames returns the material keys in sorted order.
func (ip *InputParametersPeriodic) MaterialNames() (keys []string) {
	keys = make([]string, 0, len(ip.Materials))
	for k := range ip.Materials {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return
}

func (ip *InputParametersPeriodic) Print() {
	fmt.Printf("\"%s\"\t\t= Title\n", ip.Title)
	fmt.Printf("[%d x %d]\t\t= Elements\n", ip.Nx, ip.Ny)
	fmt.Printf("%8.5f\t\t= ElementSize\n", ip.ElementSize)
	fmt.Printf("%8.5f\t\t= Shear\n", ip.Shear)
	fmt.Printf("%8.2e\t\t= Tolerance\n", ip.Tolerance)
	fmt.Printf("[%d]\t\t\t= MaxIterations\n", ip.MaxIterations)
	fmt.Printf("[%s]\t\t= Solver\n", ip.Solver)
	for _, key := range ip.MaterialNames() {
		fmt.Printf("Materials[%s] = %v\n", key, ip.Materials[key])
	}
}
