package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/samuelfneumann/exputils/analysis"
	"github.com/samuelfneumann/exputils/experiment"
	"github.com/samuelfneumann/exputils/experiment/checkpointer"
	"github.com/samuelfneumann/exputils/initwfn"
	"github.com/samuelfneumann/exputils/logging"
	"github.com/samuelfneumann/exputils/network"
	"github.com/samuelfneumann/exputils/schedule"
	"github.com/samuelfneumann/exputils/solver"
	"github.com/samuelfneumann/exputils/utils/floatutils"
	"github.com/samuelfneumann/exputils/utils/matutils"
	"github.com/samuelfneumann/exputils/utils/progressbar"
	"github.com/samuelfneumann/exputils/visual"
	"gonum.org/v1/gonum/mat"
	"k8s.io/klog/v2"
)

const (
	clusters   = 4
	perCluster = 80
	features   = 8
	neighbours = 8
)

// options configures the regressor and its training
type options struct {
	steps      int
	batchSize  int
	stepSize   float64
	clip       float64
	solver     string
	init       string
	gain       float64
	activation string
}

func main() {
	cfg := experiment.NewConfig()
	cfg.Dataset = "clusters"
	cfg.Model = "mlp_regressor"
	experiment.AddFlags(flag.CommandLine, cfg)
	var opts options
	flag.IntVar(&opts.steps, "steps", 2000, "number of training steps")
	flag.IntVar(&opts.batchSize, "batch-size", 32, "training batch size")
	flag.Float64Var(&opts.stepSize, "lr", 0.05, "initial learning rate")
	flag.Float64Var(&opts.clip, "clip", -1, "gradient clipping threshold, "+
		"<= 0 to disable")
	flag.StringVar(&opts.solver, "solver", string(solver.Vanilla),
		"solver: Vanilla, Adam, RMSProp, or Momentum")
	flag.StringVar(&opts.init, "init", string(initwfn.GlorotU),
		"weight initializer: GlorotU, GlorotN, or Zeroes")
	flag.Float64Var(&opts.gain, "gain", 1.0, "gain of the Glorot initializer")
	flag.StringVar(&opts.activation, "activation", "tanh",
		"hidden layer activation: relu, tanh, sigmoid, or identity")
	flag.Parse()

	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	if err := experiment.Setup(cfg); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if cfg.ResumeTraining && cfg.RestoreFile == "" && cfg.CheckpointDir != "" {
		cfg.RestoreFile = filepath.Join(cfg.CheckpointDir,
			checkpointer.LastFilename)
	}

	logFile, err := logging.Init(cfg, os.Args)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	err = run(cfg, opts)
	logFile.Close()
	if err != nil {
		klog.Errorf("%v", err)
		klog.Flush()
		os.Exit(1)
	}
}

func run(cfg *experiment.Config, opts options) error {
	steps, batchSize := opts.steps, opts.batchSize
	train, valid := newClusters(cfg.Source(), clusters, perCluster,
		features).split(5)

	weightInit, err := initwfn.New(initwfn.Type(opts.init), opts.gain)
	if err != nil {
		return err
	}
	s, err := solver.New(solver.Type(opts.solver), solver.Hyper{
		StepSize: opts.stepSize,
		Batch:    batchSize,
		Clip:     opts.clip,
	})
	if err != nil {
		return err
	}
	sched, err := schedule.NewCosine(opts.stepSize, opts.stepSize/100, steps)
	if err != nil {
		return err
	}
	act, err := network.ActivationByName(opts.activation)
	if err != nil {
		return err
	}
	net, err := network.NewRegressor(features, 1, batchSize, []int{32, 16},
		[]*network.Activation{act, act}, weightInit, s)
	if err != nil {
		return err
	}
	klog.V(1).Infof("Training with %v, %v initialization, and %v "+
		"activations", s.Type, weightInit.Type, act)

	tracker, err := checkpointer.NewTracker(cfg, checkpointer.Min)
	if err != nil {
		return err
	}
	if !cfg.NoSave {
		history, err := checkpointer.OpenHistory(
			filepath.Join(cfg.CheckpointDir, checkpointer.HistoryFilename))
		if err != nil {
			return err
		}
		defer history.Close()
		tracker.UseHistory(history)
	}

	models := []checkpointer.Stater{net}
	optimizers := []checkpointer.Stater{s}
	schedulers := []checkpointer.Stater{sched}

	start := 0
	record, err := tracker.Load(models, optimizers, schedulers)
	if err != nil {
		return err
	}
	if record != nil {
		start = record.Step
		klog.Infof("Resuming at step %v (best %v at step %v)", start,
			tracker.BestScore(), tracker.BestStep())
	}

	bar := progressbar.NewManualProgressBar(os.Stdout, 40, steps,
		cfg.NoProgress)
	bar.Set(start)
	defer bar.Close()

	plotDir := cfg.LogDir
	if plotDir == "" {
		plotDir = cfg.ExperimentDir
	}

	for step := start + 1; step <= steps; step++ {
		x, y := train.batch((step-1)*batchSize, batchSize)
		loss, err := net.Train(x, y)
		if err != nil {
			return err
		}
		if rate := sched.Step(); rate != s.StepSize() {
			s.SetStepSize(rate)
		}

		if step%cfg.LogInterval == 0 {
			klog.Infof("step %v | loss %.5f | lr %.5f", step, loss,
				s.StepSize())
		}

		if step%cfg.ValidInterval == 0 {
			score, err := validate(net, valid)
			if err != nil {
				return err
			}
			klog.V(1).Infof("step %v | valid loss %.5f", step, score)

			if _, err := tracker.Save(step, score, models, optimizers,
				schedulers); err != nil {
				return err
			}
		}

		if !cfg.NoVisual && step%cfg.VisualInterval == 0 {
			emb, err := embed(net, train)
			if err != nil {
				return err
			}
			if _, _, err := visual.PlotSVD(emb, step, plotDir); err != nil {
				return err
			}
		}

		bar.Increment()
		bar.Display()
	}

	klog.Infof("Best validation loss %.5f at step %v", tracker.BestScore(),
		tracker.BestStep())
	return analyse(cfg, net, train, plotDir)
}

// validate returns the mean loss over the validation set
func validate(net *network.Regressor, valid *dataset) (float64, error) {
	batches := (valid.len() + net.BatchSize() - 1) / net.BatchSize()
	total := 0.0
	for b := 0; b < batches; b++ {
		x, y := valid.batch(b*net.BatchSize(), net.BatchSize())
		loss, err := net.Loss(x, y)
		if err != nil {
			return 0, err
		}
		total += loss
	}
	return total / float64(batches), nil
}

// embed returns the final hidden layer features of every sample
func embed(net *network.Regressor, d *dataset) (*mat.Dense, error) {
	var emb *mat.Dense
	for start := 0; start < d.len(); start += net.BatchSize() {
		x, _ := d.batch(start, net.BatchSize())
		hidden, err := net.Embed(x)
		if err != nil {
			return nil, err
		}
		_, c := hidden.Dims()
		if emb == nil {
			emb = mat.NewDense(d.len(), c, nil)
		}
		for k := 0; k < net.BatchSize() && start+k < d.len(); k++ {
			emb.SetRow(start+k, hidden.RawRowView(k))
		}
	}
	return emb, nil
}

// analyse reports how well the learned features separate the clusters
func analyse(cfg *experiment.Config, net *network.Regressor, d *dataset,
	plotDir string) error {
	emb, err := embed(net, d)
	if err != nil {
		return err
	}

	graph, err := analysis.KNNGraph(emb, neighbours)
	if err != nil {
		return err
	}
	mask := analysis.FloatMask(d.labels, d.labels)
	scores, err := analysis.Connectivity(mask, graph, d.labels)
	if err != nil {
		return err
	}
	labels := analysis.Labels(scores)
	distances := make([]float64, len(labels))
	for i, label := range labels {
		distances[i] = scores[label]
		klog.Infof("Connectivity of cluster %v: %.4f", label, scores[label])
	}
	if worst, indices := floatutils.MaxSlice(distances); len(indices) > 0 {
		worstLabels := make([]int, len(indices))
		for i, index := range indices {
			worstLabels[i] = labels[index]
		}
		klog.Infof("Least connected cluster(s) %v: %.4f", worstLabels, worst)
	}
	klog.Infof("Sparsity of neighbour graph: %.2f%%", analysis.Sparsity(graph))

	w, err := net.Weights(net.Layers() - 1)
	if err != nil {
		return err
	}
	klog.V(1).Infof("Output weights:\n%v", matutils.Format(w))

	if cfg.NoVisual {
		return nil
	}
	filename, err := visual.FeatureAnalysis(emb, d.labels, 0,
		visual.FeatureOptions{LogDir: plotDir})
	if err != nil {
		return err
	}
	klog.Infof("Saved feature plot %v", filename)
	return nil
}
