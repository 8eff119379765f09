// Package dual implements the dual policy/value network: a small
// fully-connected residual tower (width K, SharedLayers blocks) feeding a
// softmax policy head over the dense move space and a tanh value head, the
// same shape AlphaZero's convolutional tower plays but sized for the small
// boards (Connect Four, chess) this engine trains on.
package dual

import (
	"encoding/gob"
	"fmt"
	"io"

	"github.com/pkg/errors"
	G "gorgonia.org/gorgonia"
	"gorgonia.org/tensor"
)

// Dual is one instantiated policy/value network, bound to a fixed batch
// size: every Infer/Train call must supply exactly Config.BatchSize rows.
type Dual struct {
	Config

	g          *G.ExprGraph
	input      *G.Node
	policyOut  *G.Node
	valueOut   *G.Node
	learnables G.Nodes

	policyTarget *G.Node
	valueTarget  *G.Node
	loss         *G.Node

	vm     G.VM
	solver G.Solver
}

func affine(g *G.ExprGraph, x *G.Node, name string, in, out int) (*G.Node, *G.Node, *G.Node) {
	w := G.NewMatrix(g, tensor.Float32, G.WithShape(in, out), G.WithName(name+"_w"), G.WithInit(G.GlorotN(1.0)))
	b := G.NewVector(g, tensor.Float32, G.WithShape(out), G.WithName(name+"_b"), G.WithInit(G.Zeroes()))
	y := G.Must(G.BroadcastAdd(G.Must(G.Mul(x, w)), b, nil, []byte{0}))
	return y, w, b
}

// New builds the computation graph described by conf. FwdOnly skips
// allocating target placeholders and the loss node, for inference-only
// instances (self-play workers never train).
func New(conf Config) (*Dual, error) {
	if !conf.IsValid() {
		return nil, errors.New("dual: invalid config")
	}

	g := G.NewGraph()
	inSize := conf.Width * conf.Height * conf.Features

	input := G.NewMatrix(g, tensor.Float32, G.WithShape(conf.BatchSize, inSize), G.WithName("input"))
	h, w0, b0 := affine(g, input, "stem", inSize, conf.K)
	h = G.Must(G.Rectify(h))
	learnables := G.Nodes{w0, b0}

	for i := 0; i < conf.SharedLayers; i++ {
		pre := h
		h1, w1, b1 := affine(g, h, fmt.Sprintf("res%d_a", i), conf.K, conf.K)
		h1 = G.Must(G.Rectify(h1))
		h2, w2, b2 := affine(g, h1, fmt.Sprintf("res%d_b", i), conf.K, conf.K)
		h = G.Must(G.Rectify(G.Must(G.Add(h2, pre))))
		learnables = append(learnables, w1, b1, w2, b2)
	}

	policyLogits, wp, bp := affine(g, h, "policy", conf.K, conf.ActionSpace)
	policyOut := G.Must(G.SoftMax(policyLogits))
	learnables = append(learnables, wp, bp)

	vh, wv1, bv1 := affine(g, h, "value_fc", conf.K, conf.FC)
	vh = G.Must(G.Rectify(vh))
	valueLogits, wv2, bv2 := affine(g, vh, "value_out", conf.FC, 1)
	valueOut := G.Must(G.Tanh(valueLogits))
	learnables = append(learnables, wv1, bv1, wv2, bv2)

	d := &Dual{
		Config:     conf,
		g:          g,
		input:      input,
		policyOut:  policyOut,
		valueOut:   valueOut,
		learnables: learnables,
	}

	if !conf.FwdOnly {
		policyTarget := G.NewMatrix(g, tensor.Float32, G.WithShape(conf.BatchSize, conf.ActionSpace), G.WithName("policyTarget"))
		valueTarget := G.NewMatrix(g, tensor.Float32, G.WithShape(conf.BatchSize, 1), G.WithName("valueTarget"))

		valueLoss := G.Must(G.Mean(G.Must(G.Square(G.Must(G.Sub(valueOut, valueTarget))))))
		logPolicy := G.Must(G.Log(policyOut))
		crossEnt := G.Must(G.Neg(G.Must(G.Mean(G.Must(G.HadamardProd(policyTarget, logPolicy))))))
		loss := G.Must(G.Add(valueLoss, crossEnt))

		d.policyTarget = policyTarget
		d.valueTarget = valueTarget
		d.loss = loss
	}

	return d, nil
}

// Init allocates the VM and solver. Must be called once before Infer/Train.
func (d *Dual) Init() error {
	if d.FwdOnly {
		d.vm = G.NewTapeMachine(d.g)
		return nil
	}
	d.vm = G.NewTapeMachine(d.g, G.BindDualValues(d.learnables...))
	d.solver = G.NewAdamSolver(G.WithLearnRate(1e-3))
	return nil
}

// Infer runs a forward pass on exactly Config.BatchSize rows of flattened
// board encodings and returns each row's policy (ActionSpace floats) and
// value.
func (d *Dual) Infer(batch []float32) (policies [][]float32, values []float32, err error) {
	inSize := d.Width * d.Height * d.Features
	t := tensor.New(tensor.WithShape(d.BatchSize, inSize), tensor.WithBacking(batch))
	if err := G.Let(d.input, t); err != nil {
		return nil, nil, errors.Wrap(err, "dual: bind input")
	}
	if err := d.vm.RunAll(); err != nil {
		return nil, nil, errors.Wrap(err, "dual: forward pass")
	}
	defer d.vm.Reset()

	policyData := d.policyOut.Value().Data().([]float32)
	valueData := d.valueOut.Value().Data().([]float32)

	policies = make([][]float32, d.BatchSize)
	for i := 0; i < d.BatchSize; i++ {
		row := make([]float32, d.ActionSpace)
		copy(row, policyData[i*d.ActionSpace:(i+1)*d.ActionSpace])
		policies[i] = row
	}
	values = append(values[:0], valueData...)
	return policies, values, nil
}

// Train runs one gradient step over a batch of (board, policy target,
// value target) triples, each flattened and concatenated row-major, and
// returns the scalar loss.
func (d *Dual) Train(boards, policyTargets, valueTargets []float32) (float32, error) {
	if d.FwdOnly {
		return 0, errors.New("dual: Train called on a forward-only network")
	}
	inSize := d.Width * d.Height * d.Features
	if err := G.Let(d.input, tensor.New(tensor.WithShape(d.BatchSize, inSize), tensor.WithBacking(boards))); err != nil {
		return 0, errors.Wrap(err, "dual: bind input")
	}
	if err := G.Let(d.policyTarget, tensor.New(tensor.WithShape(d.BatchSize, d.ActionSpace), tensor.WithBacking(policyTargets))); err != nil {
		return 0, errors.Wrap(err, "dual: bind policy target")
	}
	if err := G.Let(d.valueTarget, tensor.New(tensor.WithShape(d.BatchSize, 1), tensor.WithBacking(valueTargets))); err != nil {
		return 0, errors.Wrap(err, "dual: bind value target")
	}

	if err := d.vm.RunAll(); err != nil {
		return 0, errors.Wrap(err, "dual: forward/backward pass")
	}
	defer d.vm.Reset()

	if err := d.solver.Step(G.NodesToValueGrads(d.learnables)); err != nil {
		return 0, errors.Wrap(err, "dual: solver step")
	}

	lossVal := d.loss.Value().Data().(float32)
	return lossVal, nil
}

// checkpoint is the gob-serializable snapshot of every learnable tensor.
type checkpoint struct {
	Config Config
	Values [][]float32
	Shapes [][]int
}

// Checkpoint writes the network's weights to w.
func (d *Dual) Checkpoint(w io.Writer) error {
	ck := checkpoint{Config: d.Config}
	for _, n := range d.learnables {
		data := n.Value().Data().([]float32)
		cp := make([]float32, len(data))
		copy(cp, data)
		ck.Values = append(ck.Values, cp)
		ck.Shapes = append(ck.Shapes, n.Shape())
	}
	return gob.NewEncoder(w).Encode(ck)
}

// Restore loads weights written by Checkpoint into d. d must have been
// constructed with the same Config.
func (d *Dual) Restore(r io.Reader) error {
	var ck checkpoint
	if err := gob.NewDecoder(r).Decode(&ck); err != nil {
		return errors.Wrap(err, "dual: decode checkpoint")
	}
	if len(ck.Values) != len(d.learnables) {
		return errors.Errorf("dual: checkpoint has %d tensors, network has %d", len(ck.Values), len(d.learnables))
	}
	for i, n := range d.learnables {
		t := tensor.New(tensor.WithShape(ck.Shapes[i]...), tensor.WithBacking(ck.Values[i]))
		if err := G.Let(n, t); err != nil {
			return errors.Wrapf(err, "dual: restore tensor %d", i)
		}
	}
	return nil
}
