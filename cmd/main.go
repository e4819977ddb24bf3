package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"go.calcula.dev/internal/config"
	"go.calcula.dev/internal/server"
	calcula "go.calcula.dev/pkg"
	"go.calcula.dev/pkg/calculators"
)

var (
	verbose   bool
	logLevel  string
	logFormat string
	logger    = slog.New(slog.NewTextHandler(io.Discard, nil))
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		printErrors(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "calcula",
		Short:         "Expression evaluator, symbolic differentiator and everyday calculators",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !verbose {
				return nil
			}

			cfg := config.Default()
			cfg.LogLevel, cfg.LogFormat = logLevel, logFormat
			if err := cfg.Validate(); err != nil {
				return err
			}

			logger = config.NewLogger(cfg, os.Stderr)
			return nil
		},
	}

	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log to stderr")
	root.PersistentFlags().StringVar(&logLevel, "log-level", "debug", "log level used with --verbose")
	root.PersistentFlags().StringVar(&logFormat, "log-format", "text", "log format used with --verbose (text or json)")

	root.AddCommand(newEvalCmd(), newDeriveCmd(), newParseCmd(), newIRCmd(), newCalcCmd(), newServeCmd())

	return root
}

func parseVars(raw map[string]string) (map[string]float64, error) {
	vars := make(map[string]float64, len(raw))
	for k, v := range raw {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, fmt.Errorf("variable %s: %q is not a number", k, v)
		}

		vars[k] = f
	}

	return vars, nil
}

func newEvalCmd() *cobra.Command {
	var (
		rawVars map[string]string
		angle   string
	)

	cmd := &cobra.Command{
		Use:   "eval EXPRESSION",
		Short: "Evaluate an expression",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			vars, err := parseVars(rawVars)
			if err != nil {
				return err
			}

			unit, err := calcula.ParseAngleUnit(angle)
			if err != nil {
				return err
			}

			res := calcula.NewCalculator(calcula.WithAngleUnit(unit)).Evaluate(args[0], vars)
			logger.Debug("evaluated", "expression", args[0], "value", res.Value, "angle", unit.String())

			fmt.Fprintln(cmd.OutOrStdout(), res.Display)
			if res.Err != nil {
				return res.Err
			}

			return nil
		},
	}

	cmd.Flags().StringToStringVar(&rawVars, "var", nil, "variable bindings, e.g. --var x=3,y=2")
	cmd.Flags().StringVar(&angle, "angle", "rad", "angle unit for trigonometric functions (rad or deg)")

	return cmd
}

func newDeriveCmd() *cobra.Command {
	var (
		variable string
		raw      bool
		latex    bool
		order    int
		at       float64
		rawVars  map[string]string
	)

	cmd := &cobra.Command{
		Use:   "derive EXPRESSION",
		Short: "Differentiate an expression symbolically",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			vars, err := parseVars(rawVars)
			if err != nil {
				return err
			}

			calc := calcula.NewCalculator()
			d := calc.Derive(args[0], variable, calcula.DeriveOptions{Raw: raw, Order: order})
			if d.Err != nil {
				fmt.Fprintln(cmd.OutOrStdout(), "Error")
				return d.Err
			}

			out := cmd.OutOrStdout()
			if latex {
				fmt.Fprintln(out, d.LaTeX)
			} else {
				fmt.Fprintln(out, d.Text)
			}

			if cmd.Flags().Changed("at") {
				res := calc.At(d, at, vars)
				fmt.Fprintf(out, "at %s = %g: %s\n", d.Variable, at, res.Display)
				if res.Err != nil {
					return res.Err
				}
			}

			return nil
		},
	}

	cmd.Flags().StringVar(&variable, "wrt", calcula.DefaultVariable, "variable to differentiate with respect to")
	cmd.Flags().BoolVar(&raw, "raw", false, "print the derivative without simplification")
	cmd.Flags().BoolVar(&latex, "latex", false, "print LaTeX instead of plain text")
	cmd.Flags().IntVar(&order, "order", 1, "order of the derivative")
	cmd.Flags().Float64Var(&at, "at", 0, "evaluate the derivative at this point")
	cmd.Flags().StringToStringVar(&rawVars, "var", nil, "bindings for the other variables when using --at")

	return cmd
}

func newParseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "parse EXPRESSION",
		Short: "Print the syntax tree of an expression as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			expr, err := calcula.Parse(args[0])
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), string(calcula.MarshalExpr(expr)))
			return nil
		},
	}
}

func newIRCmd() *cobra.Command {
	var (
		name   string
		params []string
		angle  string
	)

	cmd := &cobra.Command{
		Use:   "ir EXPRESSION",
		Short: "Compile an expression to LLVM IR",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			unit, err := calcula.ParseAngleUnit(angle)
			if err != nil {
				return err
			}

			mod, err := calcula.NewCalculator(calcula.WithAngleUnit(unit)).Compile(args[0], name, params)
			if err != nil {
				return err
			}

			fmt.Fprint(cmd.OutOrStdout(), mod.String())
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "f", "name of the emitted function")
	cmd.Flags().StringSliceVar(&params, "params", nil, "parameter order (default: free variables, sorted)")
	cmd.Flags().StringVar(&angle, "angle", "rad", "angle unit the compiled trigonometric functions use (rad or deg)")

	return cmd
}

func newCalcCmd() *cobra.Command {
	var rawParams []string

	cmd := &cobra.Command{
		Use:       "calc KIND",
		Short:     "Run one of the everyday calculators",
		Long:      "Run one of the everyday calculators. Inputs are passed as --param name=value.",
		Args:      cobra.ExactArgs(1),
		ValidArgs: calculators.Kinds(),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := calculators.ParseKind(args[0])
			if err != nil {
				return err
			}

			params := make(calculators.Params, len(rawParams))
			for _, p := range rawParams {
				k, v, ok := strings.Cut(p, "=")
				if !ok {
					return fmt.Errorf("param %q must be name=value", p)
				}

				params[k] = v
			}

			result, err := calculators.Run(kind, params, calculators.DefaultIndiaRules)
			if err != nil {
				fmt.Fprintln(cmd.OutOrStdout(), "Error")
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(result)
		},
	}

	// Not StringToString: values such as numbers=12,18 contain commas.
	cmd.Flags().StringArrayVarP(&rawParams, "param", "p", nil, "calculator input, e.g. -p principal=10000 -p rate=5")

	return cmd
}

func newServeCmd() *cobra.Command {
	var (
		addr      string
		rateLimit float64
		rateBurst int
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the JSON HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.FromEnv(config.DefaultPrefix)
			if err != nil {
				return err
			}

			if cmd.Flags().Changed("addr") {
				cfg.Addr = addr
			}
			if cmd.Flags().Changed("rate-limit") {
				cfg.RateLimit = rateLimit
			}
			if cmd.Flags().Changed("rate-burst") {
				cfg.RateBurst = rateBurst
			}
			if cmd.Flags().Changed("log-level") {
				cfg.LogLevel = logLevel
			}
			if cmd.Flags().Changed("log-format") {
				cfg.LogFormat = logFormat
			}

			if err := cfg.Validate(); err != nil {
				return err
			}

			log := config.NewLogger(cfg, os.Stderr)
			srv := server.New(cfg, log)

			errc := make(chan error, 1)
			go func() {
				errc <- srv.Start()
			}()

			quit := make(chan os.Signal, 1)
			signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

			select {
			case err := <-errc:
				return err
			case sig := <-quit:
				log.Info("shutting down", "signal", sig.String())
			}

			ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
			defer cancel()

			if err := srv.Shutdown(ctx); err != nil {
				log.Error("shutdown", "err", err)
				return err
			}

			log.Info("stopped")
			return <-errc
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address (env CALCULA_ADDR)")
	cmd.Flags().Float64Var(&rateLimit, "rate-limit", 20, "requests per second per client, 0 disables (env CALCULA_RATE_LIMIT)")
	cmd.Flags().IntVar(&rateBurst, "rate-burst", 40, "rate limiter burst (env CALCULA_RATE_BURST)")

	return cmd
}

func printErrors(w io.Writer, errs ...error) {
	for _, err := range errs {
		var (
			parseErr   *calcula.ParseError
			unboundErr *calcula.UnboundVariableError
			unsupErr   *calcula.UnsupportedOperationError
			arityErr   *calcula.ArityError
		)

		switch {
		case errors.As(err, &parseErr):
			fmt.Fprintln(w, "Bad expression:", parseErr.Msg, "at offset", parseErr.Pos)
		case errors.As(err, &unboundErr):
			fmt.Fprintln(w, "Unbound variable:", unboundErr.Name)
		case errors.As(err, &unsupErr):
			fmt.Fprintln(w, "Unsupported operation:", unsupErr.Op, unsupErr.Reason)
		case errors.As(err, &arityErr):
			fmt.Fprintln(w, "Wrong number of arguments:", arityErr)
		case errors.Is(err, calculators.ErrDivisionByZero):
			fmt.Fprintln(w, "Division by zero")
		default:
			fmt.Fprintln(w, "Error:", err)
		}
	}
}
