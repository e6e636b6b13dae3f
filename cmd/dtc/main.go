package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/datawire/dlib/dgroup"
	"github.com/datawire/dlib/dlog"
	"github.com/datawire/ocibuild/pkg/cliutil"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/dtng/devicetree"
)

// formatFlag is a pflag.Value enum restricted to "dts" and "dtb".
type formatFlag struct {
	val string
}

func (f *formatFlag) String() string { return f.val }
func (f *formatFlag) Type() string   { return "dts|dtb" }
func (f *formatFlag) Set(s string) error {
	if s != "dts" && s != "dtb" {
		return fmt.Errorf("must be %q or %q", "dts", "dtb")
	}
	f.val = s
	return nil
}

var _ pflag.Value = (*formatFlag)(nil)

type logLevelFlag struct {
	logrus.Level
}

func (lvl *logLevelFlag) Type() string { return "loglevel" }
func (lvl *logLevelFlag) Set(str string) error {
	var err error
	lvl.Level, err = logrus.ParseLevel(str)
	return err
}

var _ pflag.Value = (*logLevelFlag)(nil)

func main() {
	if err := Main(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "%v: error: %v\n", os.Args[0], err)
		os.Exit(1)
	}
}

func Main(args []string) error {
	logLevel := logLevelFlag{Level: logrus.InfoLevel}
	inType := formatFlag{}
	outType := formatFlag{}
	var inFile, outFile string

	argparser := &cobra.Command{
		Use:   "dtc {[flags]|SUBCOMMAND}",
		Short: "Convert between device tree source and device tree blob",

		Args: cliutil.WrapPositionalArgs(cobra.NoArgs),

		SilenceErrors: true,
		SilenceUsage:  true,

		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
	}
	argparser.SetFlagErrorFunc(cliutil.FlagErrorFunc)
	argparser.SetHelpTemplate(cliutil.HelpTemplate)
	argparser.PersistentFlags().Var(&logLevel, "verbosity", "set the verbosity")
	argparser.Flags().Var(&inType, "in-type", "input format")
	argparser.Flags().Var(&outType, "out-type", "output format")
	argparser.Flags().StringVar(&inFile, "in-file", "", "input `path`")
	argparser.Flags().StringVar(&outFile, "out-file", "", "output `path`")
	for _, name := range []string{"in-type", "out-type", "in-file", "out-file"} {
		if err := argparser.MarkFlagRequired(name); err != nil {
			panic(err)
		}
	}
	if err := argparser.MarkFlagFilename("in-file"); err != nil {
		panic(err)
	}
	if err := argparser.MarkFlagFilename("out-file"); err != nil {
		panic(err)
	}

	argparser.RunE = func(cmd *cobra.Command, _ []string) error {
		if inType.val == outType.val {
			return fmt.Errorf("--in-type and --out-type must differ")
		}

		ctx := cmd.Context()
		logger := logrus.New()
		logger.SetLevel(logLevel.Level)
		ctx = dlog.WithLogger(ctx, dlog.WrapLogrus(logger))

		grp := dgroup.NewGroup(ctx, dgroup.GroupConfig{
			EnableSignalHandling: true,
		})
		grp.Go("convert", func(ctx context.Context) error {
			return convert(ctx, inType.val, inFile, outType.val, outFile)
		})
		return grp.Wait()
	}

	argparser.AddCommand(newInspectCommand())

	return argparser.ExecuteContext(context.Background())
}

func convert(ctx context.Context, inType, inFile, outType, outFile string) error {
	data, err := os.ReadFile(inFile)
	if err != nil {
		return fmt.Errorf("read %s: %w", inFile, err)
	}

	var dt *devicetree.DeviceTree
	switch inType {
	case "dts":
		dlog.Debugf(ctx, "parsing %s as DTS", inFile)
		dt, err = devicetree.FromDTS(data, devicetree.ParseOptions{
			BaseDir: filepath.Dir(inFile),
			Warnf: func(format string, args ...any) {
				dlog.Warnf(ctx, format, args...)
			},
		})
	case "dtb":
		dlog.Debugf(ctx, "parsing %s as DTB", inFile)
		dt, err = devicetree.FromDTB(data)
	default:
		return fmt.Errorf("unknown input type %q", inType)
	}
	if err != nil {
		return fmt.Errorf("parse %s: %w", inFile, err)
	}

	var out []byte
	switch outType {
	case "dts":
		out = []byte(dt.ToDTS())
	case "dtb":
		out, err = dt.ToDTB()
		if err != nil {
			return fmt.Errorf("generate DTB: %w", err)
		}
	default:
		return fmt.Errorf("unknown output type %q", outType)
	}

	if err := os.WriteFile(outFile, out, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", outFile, err)
	}
	dlog.Infof(ctx, "wrote %s", outFile)
	return nil
}
