package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/pkg/errors"
	"github.com/schollz/progressbar/v3"
	"gonum.org/v1/gonum/mat"
	"k8s.io/klog/v2"

	"github.com/born-ml/latent/models"
)

// sampleOptions holds the parsed flags of the sample command.
type sampleOptions struct {
	model    string
	nvis     int
	nhid     int
	vis      string
	hid      string
	batch    int
	method   string
	mode     string
	steps    int
	beta     float64
	seed     int64
	progress bool
}

func parseSampleFlags(args []string) (*sampleOptions, error) {
	opts := &sampleOptions{}
	fs := flag.NewFlagSet("sample", flag.ContinueOnError)
	fs.StringVar(&opts.model, "model", "rbm", "model variant: rbm, hopfield or grbm")
	fs.IntVar(&opts.nvis, "nvis", 16, "number of visible units")
	fs.IntVar(&opts.nhid, "nhid", 8, "number of hidden units")
	fs.StringVar(&opts.vis, "vis", "bernoulli", "visible unit type (rbm, hopfield)")
	fs.StringVar(&opts.hid, "hid", "bernoulli", "hidden unit type (rbm, grbm)")
	fs.IntVar(&opts.batch, "batch", 32, "number of chains")
	fs.StringVar(&opts.method, "init", "hinton", "initialization method: hinton or glorot_normal")
	fs.StringVar(&opts.mode, "mode", "gibbs", "relaxation: gibbs, meanfield or deterministic")
	fs.IntVar(&opts.steps, "steps", 100, "number of steps")
	fs.Float64Var(&opts.beta, "beta", 1, "inverse temperature of the bilinear term")
	fs.Int64Var(&opts.seed, "seed", -1, "random seed (-1 = random)")
	fs.BoolVar(&opts.progress, "progress", true, "show a progress bar on stderr")
	klog.InitFlags(fs)

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if opts.batch <= 0 {
		return nil, errors.Errorf("-batch must be > 0, got %d", opts.batch)
	}
	if opts.steps < 0 {
		return nil, errors.Errorf("-steps must be >= 0, got %d", opts.steps)
	}
	return opts, nil
}

// buildModel constructs the requested variant.
func buildModel(opts *sampleOptions) (models.Model, error) {
	cfg := models.DefaultConfig()
	cfg.Seed = opts.seed

	switch opts.model {
	case "rbm":
		vis, err := models.ParseUnitKind(opts.vis)
		if err != nil {
			return nil, err
		}
		hid, err := models.ParseUnitKind(opts.hid)
		if err != nil {
			return nil, err
		}
		rbm, err := models.NewRBM(opts.nvis, opts.nhid, vis, hid, cfg)
		if err != nil {
			return nil, err
		}
		return rbm, nil
	case "hopfield":
		vis, err := models.ParseUnitKind(opts.vis)
		if err != nil {
			return nil, err
		}
		hop, err := models.NewHopfield(opts.nvis, opts.nhid, vis, cfg)
		if err != nil {
			return nil, err
		}
		return hop, nil
	case "grbm":
		hid, err := models.ParseUnitKind(opts.hid)
		if err != nil {
			return nil, err
		}
		grbm, err := models.NewGaussianRBM(opts.nvis, opts.nhid, hid, cfg)
		if err != nil {
			return nil, err
		}
		return grbm, nil
	default:
		return nil, errors.Errorf("unknown model %q (want rbm, hopfield or grbm)", opts.model)
	}
}

// stepper returns the single-step relaxation selected by mode.
func stepper(m models.Model, mode string) (func(mat.Matrix, *mat.VecDense) *mat.Dense, error) {
	switch mode {
	case "gibbs":
		return m.MCStep, nil
	case "meanfield":
		return m.MeanFieldStep, nil
	case "deterministic":
		return m.DeterministicStep, nil
	default:
		return nil, errors.Errorf("unknown mode %q (want gibbs, meanfield or deterministic)", mode)
	}
}

func runSample(args []string, out io.Writer) error {
	opts, err := parseSampleFlags(args)
	if err != nil {
		return err
	}
	method, err := models.ParseInitMethod(opts.method)
	if err != nil {
		return err
	}
	m, err := buildModel(opts)
	if err != nil {
		return err
	}
	step, err := stepper(m, opts.mode)
	if err != nil {
		return err
	}

	data := m.Random(mat.NewDense(opts.batch, opts.nvis, nil))
	if err := m.Initialize(data, method); err != nil {
		return errors.Wrap(err, "initialize")
	}

	var beta *mat.VecDense
	if opts.beta != 1 {
		beta = mat.NewVecDense(1, []float64{opts.beta})
	}

	before := meanFreeEnergy(m, data, beta)
	state := relax(m, data, opts, step, beta)
	after := meanFreeEnergy(m, state, beta)

	_, err = fmt.Fprintln(out, summary(opts, before, after))
	return err
}

// relax runs steps single-step updates from v, reporting progress on stderr.
func relax(m models.Model, v mat.Matrix, opts *sampleOptions, step func(mat.Matrix, *mat.VecDense) *mat.Dense, beta *mat.VecDense) *mat.Dense {
	if !opts.progress || opts.steps == 0 {
		switch opts.mode {
		case "meanfield":
			return m.MeanFieldIteration(v, opts.steps, beta)
		case "deterministic":
			return m.DeterministicIteration(v, opts.steps, beta)
		default:
			return m.MarkovChain(v, opts.steps, beta)
		}
	}

	bar := progressbar.NewOptions(opts.steps,
		progressbar.OptionSetDescription(opts.mode),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionShowCount(),
		progressbar.OptionSetItsString("steps"),
		progressbar.OptionShowIts(),
		progressbar.OptionSetTheme(progressbar.ThemeASCII),
		progressbar.OptionClearOnFinish(),
	)
	state := mat.DenseCopyOf(v)
	for t := 0; t < opts.steps; t++ {
		state = step(state, beta)
		_ = bar.Add(1)
	}
	_ = bar.Finish()
	return state
}

func meanFreeEnergy(m models.Model, v mat.Matrix, beta *mat.VecDense) float64 {
	f := m.MarginalFreeEnergy(v, beta)
	return mat.Sum(f) / float64(f.Len())
}

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle  = lipgloss.NewStyle().Padding(0, 1)
	valueStyle = lipgloss.NewStyle().Align(lipgloss.Right).Padding(0, 1)
)

// summary renders the run configuration and free energies as a table.
func summary(opts *sampleOptions, before, after float64) string {
	f := func(x float64) string { return strconv.FormatFloat(x, 'f', 6, 64) }
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		StyleFunc(func(_, col int) lipgloss.Style {
			if col == 1 {
				return valueStyle
			}
			return cellStyle
		}).
		Rows(
			[]string{"model", opts.model},
			[]string{"units", fmt.Sprintf("%d x %d", opts.nvis, opts.nhid)},
			[]string{"mode", fmt.Sprintf("%s (%d steps)", opts.mode, opts.steps)},
			[]string{"beta", f(opts.beta)},
			[]string{"free energy before", f(before)},
			[]string{"free energy after", f(after)},
		)
	return lipgloss.JoinVertical(lipgloss.Left, titleStyle.Render("latent sample"), t.Render())
}
