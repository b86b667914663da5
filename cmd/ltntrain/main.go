package main

import (
	"math/rand"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/yeongwoong43/ltn-muttaki/ltn"
	"github.com/yeongwoong43/ltn-muttaki/tensor"
)

// ltntrain fits a small MLP predicate to a linearly separable point cloud
// from logical supervision only: two axioms, "forall a: A(a)" and
// "forall b: not A(b)", maximized through the satisfaction aggregator.

type options struct {
	epochs int
	points int
	hidden int
	lr     float64
	p      float64
	seed   int64
}

func main() {
	opts := options{}

	rootCmd := &cobra.Command{
		Use:   "ltntrain",
		Short: "train a fuzzy classifier from first-order axioms",
		RunE: func(cmd *cobra.Command, args []string) error {
			if debug, _ := cmd.Flags().GetBool("debug"); debug {
				log.SetLevel(log.DebugLevel)
			}
			return run(opts)
		},
	}

	rootCmd.Flags().IntVar(&opts.epochs, "epochs", 1000, "training epochs")
	rootCmd.Flags().IntVar(&opts.points, "points", 50, "points sampled per class")
	rootCmd.Flags().IntVar(&opts.hidden, "hidden", 16, "hidden units of the predicate MLP")
	rootCmd.Flags().Float64Var(&opts.lr, "lr", 0.01, "Adam learning rate")
	rootCmd.Flags().Float64Var(&opts.p, "p", ltn.DefaultP, "quantifier aggregation exponent")
	rootCmd.Flags().Int64Var(&opts.seed, "seed", 1, "RNG seed")
	rootCmd.Flags().Bool("debug", false, "enable debug logging")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(opts options) error {
	rand.Seed(opts.seed)

	// points in the unit square; class A lives below the diagonal x+y < 1
	inA, inB := sampleClasses(opts.points)
	log.WithFields(log.Fields{
		"classA": len(inA) / 2,
		"classB": len(inB) / 2,
	}).Info("sampled training points")

	model := newMLP(2, opts.hidden)
	isA := ltn.NewPredicateFromLogits(model.logits)
	forall := ltn.NewForAll(opts.p)

	opt := tensor.NewAdam(model.params(), opts.lr)
	for epoch := 1; epoch <= opts.epochs; epoch++ {
		a, err := ltn.NewVariable("a", tensor.FromSlice(inA, len(inA)/2, 2))
		if err != nil {
			return err
		}
		b, err := ltn.NewVariable("b", tensor.FromSlice(inB, len(inB)/2, 2))
		if err != nil {
			return err
		}

		posA, err := isA.Call(a)
		if err != nil {
			return err
		}
		axiomA, err := forall.Apply([]*ltn.Term{a}, posA)
		if err != nil {
			return err
		}

		posB, err := isA.Call(b)
		if err != nil {
			return err
		}
		negB, err := ltn.Not(posB)
		if err != nil {
			return err
		}
		axiomB, err := forall.Apply([]*ltn.Term{b}, negB)
		if err != nil {
			return err
		}

		sat, err := ltn.SatAgg(opts.p, axiomA, axiomB)
		if err != nil {
			return err
		}
		loss := tensor.SubFromScalar(sat, 1)

		opt.ZeroGrad()
		if err := loss.Backward(); err != nil {
			return err
		}
		opt.Step()

		if epoch%100 == 0 || epoch == 1 {
			level, err := sat.Item()
			if err != nil {
				return err
			}
			log.WithFields(log.Fields{
				"epoch": epoch,
				"sat":   level,
			}).Info("satisfaction level")
		}
	}

	acc, err := accuracy(isA, inA, inB)
	if err != nil {
		return err
	}
	log.WithField("accuracy", acc).Info("training finished")
	return nil
}

func sampleClasses(perClass int) (inA, inB []float64) {
	for len(inA) < 2*perClass || len(inB) < 2*perClass {
		x, y := rand.Float64(), rand.Float64()
		if x+y < 1 && len(inA) < 2*perClass {
			inA = append(inA, x, y)
		} else if x+y >= 1 && len(inB) < 2*perClass {
			inB = append(inB, x, y)
		}
	}
	return inA, inB
}

// mlp is a two-layer perceptron producing one logit per input row.
type mlp struct {
	w1, b1, w2, b2 *tensor.Tensor
}

func newMLP(in, hidden int) *mlp {
	m := &mlp{
		w1: tensor.Randn(in, hidden),
		b1: tensor.Zeros(hidden),
		w2: tensor.Randn(hidden, 1),
		b2: tensor.Zeros(1),
	}
	scale := 1.0 / float64(in)
	for i := range m.w1.Data {
		m.w1.Data[i] *= scale
	}
	for _, p := range m.params() {
		p.RequiresGrad = true
	}
	return m
}

func (m *mlp) params() []*tensor.Tensor {
	return []*tensor.Tensor{m.w1, m.b1, m.w2, m.b2}
}

func (m *mlp) logits(args ...*tensor.Tensor) (*tensor.Tensor, error) {
	h, err := tensor.MatMul(args[0], m.w1)
	if err != nil {
		return nil, err
	}
	if h, err = tensor.Add(h, m.b1); err != nil {
		return nil, err
	}
	out, err := tensor.MatMul(tensor.Tanh(h), m.w2)
	if err != nil {
		return nil, err
	}
	return tensor.Add(out, m.b2)
}

func accuracy(isA *ltn.Predicate, inA, inB []float64) (float64, error) {
	correct, total := 0, 0
	score := func(points []float64, wantA bool) error {
		v, err := ltn.NewVariable("x", tensor.FromSlice(points, len(points)/2, 2))
		if err != nil {
			return err
		}
		f, err := isA.Call(v)
		if err != nil {
			return err
		}
		for _, truth := range f.Value.Data {
			if (truth > 0.5) == wantA {
				correct++
			}
			total++
		}
		return nil
	}
	if err := score(inA, true); err != nil {
		return 0, err
	}
	if err := score(inB, false); err != nil {
		return 0, err
	}
	return float64(correct) / float64(total), nil
}
