package qsim

import (
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/theapemachine/errnie"
)

// Step is one queued gate application.
type Step struct {
	Gate     Gate
	Targets  []int
	Controls []int
}

/*
Circuit queues gates against an owned register and applies them on Run. It
keeps a history of every measurement taken since the last Reset.
*/
type Circuit struct {
	register     *Register
	steps        []Step
	measurements [][]int
}

func NewCircuit(n int, opts ...Option) (*Circuit, error) {
	reg, err := NewRegister(n, opts...)
	if err != nil {
		return nil, err
	}

	errnie.Info("NewCircuit - qubits %d", n)

	return &Circuit{register: reg}, nil
}

// Register exposes the owned register, e.g. for algorithms that work on it directly.
func (c *Circuit) Register() *Register {
	return c.register
}

func (c *Circuit) NumQubits() int {
	return c.register.numQubits
}

func (c *Circuit) Len() int {
	return len(c.steps)
}

// AddGate queues g on targets. Nothing is applied until Run.
func (c *Circuit) AddGate(g Gate, targets ...int) error {
	return c.AddControlled(g, nil, targets...)
}

func (c *Circuit) AddControlled(g Gate, controls []int, targets ...int) error {
	if len(targets) != g.qubits {
		return fmt.Errorf("%w: %s acts on %d qubits, got %d targets", ErrDimensionMismatch, g.name, g.qubits, len(targets))
	}
	if err := c.register.checkDistinct(append(slices.Clone(controls), targets...)); err != nil {
		return err
	}

	c.steps = append(c.steps, Step{
		Gate:     g,
		Targets:  slices.Clone(targets),
		Controls: slices.Clone(controls),
	})
	return nil
}

// AddNamed queues a gate looked up with GateByName.
func (c *Circuit) AddNamed(name string, params []float64, targets ...int) error {
	g, err := GateByName(name, params...)
	if err != nil {
		return err
	}
	return c.AddGate(g, targets...)
}

/*
Run applies every queued step, in insertion order, to the current register
state and returns the resulting state vector. Running twice applies the
steps twice; call Reset in between to start from |0...0⟩.
*/
func (c *Circuit) Run() (StateVector, error) {
	for i, step := range c.steps {
		if err := c.register.ApplyControlled(step.Gate, step.Controls, step.Targets...); err != nil {
			return StateVector{}, fmt.Errorf("step %d (%s): %w", i, step.Gate, err)
		}
	}
	return c.register.StateVector(), nil
}

// Measure measures the whole register and records the outcome.
func (c *Circuit) Measure() []int {
	bits := c.register.Measure()
	c.measurements = append(c.measurements, bits)
	return bits
}

// Measurements returns the recorded outcomes, oldest first.
func (c *Circuit) Measurements() [][]int {
	out := make([][]int, len(c.measurements))
	for i, m := range c.measurements {
		out[i] = slices.Clone(m)
	}
	return out
}

// Reset puts the register back in |0...0⟩ and clears the history. Queued steps stay.
func (c *Circuit) Reset() {
	c.register.Reset()
	c.measurements = nil
}

func (c *Circuit) Probabilities() map[string]float64 {
	return c.register.Probabilities()
}

// StepView describes one queued step for display. It has no behavior.
type StepView struct {
	Step     int       `json:"step"`
	Gate     string    `json:"gate"`
	Targets  []int     `json:"targets"`
	Controls []int     `json:"controls,omitempty"`
	Params   []float64 `json:"params,omitempty"`
}

func (c *Circuit) Visualize() []StepView {
	views := make([]StepView, len(c.steps))
	for i, step := range c.steps {
		views[i] = StepView{
			Step:     i,
			Gate:     step.Gate.name,
			Targets:  slices.Clone(step.Targets),
			Controls: slices.Clone(step.Controls),
			Params:   step.Gate.Params(),
		}
	}
	return views
}

// ToQASM writes the queued steps as OpenQASM 2.0. Steps with no qelib1.inc
// equivalent, such as PREP, are written as comments.
func (c *Circuit) ToQASM() string {
	var sb strings.Builder
	n := c.register.numQubits

	sb.WriteString("OPENQASM 2.0;\n")
	sb.WriteString("include \"qelib1.inc\";\n\n")
	fmt.Fprintf(&sb, "qreg q[%d];\n", n)
	fmt.Fprintf(&sb, "creg c[%d];\n\n", n)

	for _, step := range c.steps {
		name, ok := qasmName(step)

		if params := step.Gate.params; len(params) > 0 {
			ps := make([]string, len(params))
			for i, p := range params {
				ps[i] = formatAngle(p)
			}
			name += "(" + strings.Join(ps, ",") + ")"
		}

		qubits := make([]string, 0, len(step.Controls)+len(step.Targets))
		for _, q := range append(slices.Clone(step.Controls), step.Targets...) {
			qubits = append(qubits, fmt.Sprintf("q[%d]", q))
		}

		if !ok {
			sb.WriteString("// unsupported: ")
		}
		fmt.Fprintf(&sb, "%s %s;\n", name, strings.Join(qubits, ", "))
	}

	if len(c.measurements) > 0 {
		for q := 0; q < n; q++ {
			fmt.Fprintf(&sb, "measure q[%d] -> c[%d];\n", q, q)
		}
	}

	return sb.String()
}

var qelibGates = map[string]bool{
	"id": true, "x": true, "y": true, "z": true, "h": true,
	"s": true, "sdg": true, "t": true, "tdg": true,
	"rx": true, "ry": true, "rz": true, "p": true, "u1": true,
	"cx": true, "cy": true, "cz": true, "ch": true, "swap": true,
	"crx": true, "cry": true, "crz": true, "cp": true, "cu1": true,
	"ccx": true, "cswap": true, "c3x": true, "c4x": true,
}

// qasmName spells a step as its qelib1.inc gate and reports whether there is one.
func qasmName(step Step) (string, bool) {
	base := strings.ToLower(step.Gate.name)
	if base == "i" {
		base = "id"
	}
	name := strings.Repeat("c", len(step.Controls)) + base

	if strings.TrimLeft(name, "c") == "x" {
		switch len(name) - 1 {
		case 3:
			name = "c3x"
		case 4:
			name = "c4x"
		}
	}

	return name, qelibGates[name]
}

// Render draws the circuit as text, one wire per qubit.
func (c *Circuit) Render() string {
	return renderCircuit(c.register.numQubits, c.steps)
}

// WriteProbabilities writes a table of the non-zero basis states.
func (c *Circuit) WriteProbabilities(w io.Writer) error {
	return writeStateTable(w, c.register.StateVector())
}
