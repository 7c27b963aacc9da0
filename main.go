// nbsvg displays SVG drawings held in a widget model, in live views.
//
// The drawing comes from one source: a file watched for changes (-file), a ZeroMQ
// bus where another process publishes its model (-bus), or an animated demo (-demo).
// It is then served to browsers (-serve), rendered once to a static HTML file (-render),
// and/or published to the bus for other processes (-publish).
//
// Flags can also be given in a YAML file (-config, or the NBSVG_CONFIG environment
// variable). Explicitly set flags take precedence.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/pkg/errors"
	"github.com/rmorshead/nbsvg/bus"
	"github.com/rmorshead/nbsvg/common"
	"github.com/rmorshead/nbsvg/config"
	"github.com/rmorshead/nbsvg/model"
	"github.com/rmorshead/nbsvg/protocol"
	"github.com/rmorshead/nbsvg/server"
	"github.com/rmorshead/nbsvg/snapshot"
	"github.com/rmorshead/nbsvg/version"
	"github.com/rmorshead/nbsvg/view"
	"github.com/rmorshead/nbsvg/watch"
	"github.com/rmorshead/nbsvg/widget"
	klog "k8s.io/klog/v2"
)

// Flags that override the configuration. They are read back with config.Config.Override.
func init() {
	flag.String(config.FlagServe, "", "Address where to serve the live view, e.g. \"localhost:8080\".")
	flag.String(config.FlagFile, "", "SVG file to display. It is reloaded whenever it changes.")
	flag.String(config.FlagSubscribe, "", "ZeroMQ endpoint from where to receive the drawing, e.g. \"tcp://127.0.0.1:5555\".")
	flag.String(config.FlagPublish, "", "ZeroMQ endpoint where to publish changes of the drawing, e.g. \"tcp://*:5555\".")
	flag.String(config.FlagAttribute, view.AttrSVG, "Model attribute holding the markup. Live views and renders always display \"svg\".")
	flag.String(config.FlagRender, "", "Render the drawing once to the given static HTML file.")
	flag.Bool(config.FlagDemo, false, "Display an animated demo drawing.")
	flag.String(config.FlagSnapshot, "", "Directory where the last drawing is kept, and restored from at start.")
	flag.Var(&common.ArrayFlag{}, config.FlagModel, "Model id whose updates are applied from -bus. Can be repeated. By default all models are accepted.")
}

var (
	flagConfig       = flag.String("config", "",
		fmt.Sprintf("YAML configuration file. Defaults to the value of $%s.", protocol.NBSVG_CONFIG_ENV))
	flagShortVersion = flag.Bool("V", false, "Print version information")
	flagLongVersion  = flag.Bool("version", false, "Print detailed version information")
)

const demoInterval = 100 * time.Millisecond

var (
	// UniqueID identifies this execution in the logs.
	UniqueID        = common.UniqueId()
	coloredUniqueID = color.New(color.BgGreen, color.FgBlack).Sprintf("[%s]", UniqueID) + " "
)

func main() {
	klog.InitFlags(nil)
	flag.Parse()
	defer klog.Flush()

	if len(flag.Args()) > 0 {
		_, _ = fmt.Fprintf(os.Stderr, "No extra arguments are allowed (passed %q). Use --help for more information.\n", flag.Args())
		os.Exit(1)
	}

	// --version or -V
	if printVersion() {
		return
	}
	setUpKlog()

	cfg, err := loadConfig(flag.CommandLine, *flagConfig)
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "%v\n\n", err)
		flag.PrintDefaults()
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	if err = run(ctx, cfg); err != nil {
		klog.Errorf("%+v", err)
		klog.Flush()
		os.Exit(1)
	}
	klog.V(1).Infof("Exiting...")
}

// printVersion returns whether version printing was requested.
func printVersion() bool {
	if *flagShortVersion {
		fmt.Println(version.AppVersion.String())
		return true
	} else if *flagLongVersion {
		version.AppVersion.Fprint(os.Stdout)
		return true
	}
	return false
}

// loadConfig reads the configuration file, overrides it with the flags explicitly set in fs,
// and validates the result.
func loadConfig(fs *flag.FlagSet, configPath string) (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if err = cfg.Override(fs); err != nil {
		return nil, err
	}
	if err = cfg.Validate(); err != nil {
		return nil, errors.WithMessage(err, "invalid configuration")
	}
	return cfg, nil
}

// UniqueIDFilter prepends the UniqueID for every log line.
type UniqueIDFilter struct{}

// prepend value to slice.
func prepend[T any](slice []T, element T) []T {
	slice = append(slice, element) // It will be overwritten.
	copy(slice[1:], slice)         // Shift to the "right"
	slice[0] = element
	return slice
}

// Filter implements klog.LogFilter interface.
func (UniqueIDFilter) Filter(args []interface{}) []interface{} {
	return prepend(args, any(coloredUniqueID))
}

// FilterF implements klog.LogFilter interface.
func (UniqueIDFilter) FilterF(format string, args []interface{}) (string, []interface{}) {
	return "%s" + format, prepend(args, any(coloredUniqueID))
}

// FilterS implements klog.LogFilter interface.
func (UniqueIDFilter) FilterS(msg string, keysAndValues []interface{}) (string, []interface{}) {
	return coloredUniqueID + msg, keysAndValues
}

// setUpKlog to include prefix with the execution's UniqueID.
func setUpKlog() {
	log.SetPrefix(coloredUniqueID)
	klog.SetLogFilter(UniqueIDFilter{})
}

var (
	colorLabel = color.New(color.FgBlue)
	colorValue = color.New(color.FgGreen, color.Bold)
)

// status prints a colored status line to stderr.
func status(label, format string, args ...any) {
	_, _ = colorLabel.Fprintf(os.Stderr, "%s: ", label)
	_, _ = colorValue.Fprintf(os.Stderr, format+"\n", args...)
}

// run connects the configured source of the drawing to the configured outputs, and
// blocks until ctx is done, or until the work is done if there is nothing to serve.
func run(ctx context.Context, cfg *config.Config) error {
	if cfg.Attribute != view.AttrSVG && (cfg.Serve != "" || cfg.Render != "") {
		klog.Warningf("Views only display the %q attribute, but the drawing is stored in %q", view.AttrSVG, cfg.Attribute)
	}
	m := model.New(map[string]any{cfg.Attribute: ""})
	if cfg.Snapshot != "" {
		store, err := snapshot.New(cfg.Snapshot)
		if err != nil {
			return err
		}
		release, err := snapshot.Bind(store, m, cfg.Attribute)
		if err != nil {
			return err
		}
		defer release()
		status("Snapshots", "%s", store.Dir())
	}

	// Source.
	switch {
	case cfg.File != "":
		watcher, err := watch.File(cfg.File, m, cfg.Attribute)
		if err != nil {
			return err
		}
		defer func() { _ = watcher.Close() }()
		status("Watching", "%s", watcher.Path())

	case cfg.Subscribe != "":
		subscriber, err := bus.NewSubscriber(ctx, cfg.Subscribe, m, cfg.Models...)
		if err != nil {
			return err
		}
		defer func() { _ = subscriber.Close() }()
		status("Subscribed", "%s", cfg.Subscribe)

	case cfg.Demo:
		drawing := widget.Demo()
		w := widget.New(drawing, m)
		animationCtx, stopAnimation := context.WithCancel(ctx)
		animationDone := common.NewLatch()
		go func() {
			defer animationDone.Trigger()
			widget.Animate(animationCtx, drawing, demoInterval, 6)
		}()
		defer func() {
			stopAnimation()
			animationDone.Wait()
			w.Close()
		}()
		status("Demo", "animated clock")
	}

	// Outputs.
	if cfg.Publish != "" {
		publisher, err := bus.NewPublisher(ctx, cfg.Publish, m, cfg.Attribute)
		if err != nil {
			return err
		}
		defer func() { _ = publisher.Close() }()
		if err = publisher.Publish(cfg.Attribute); err != nil {
			return err
		}
		status("Publishing", "%s (model %s)", cfg.Publish, m.Id())
	}

	if cfg.Render != "" {
		if err := renderFile(cfg.Render, m); err != nil {
			return err
		}
		status("Rendered", "%s", cfg.Render)
	}

	if cfg.Serve != "" {
		s := server.New(m, server.WithTitle(fmt.Sprintf("nbsvg %s", version.AppVersion)))
		status("Serving", "http://%s/", cfg.Serve)
		return s.ListenAndServe(ctx, cfg.Serve)
	}
	if cfg.Publish != "" {
		<-ctx.Done()
	}
	return nil
}
