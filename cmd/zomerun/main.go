package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/wippyai/zome-engine/capability"
	"github.com/wippyai/zome-engine/ribosome"
	"github.com/wippyai/zome-engine/wire"
)

func main() {
	var (
		wasmFile    = flag.String("wasm", "", "Path to zome wasm file")
		funcName    = flag.String("func", "", "Exported function to call")
		zomeName    = flag.String("zome", "zome", "Zome name for call metadata")
		inputStr    = flag.String("input", "", "Input payload (JSON text)")
		inputFile   = flag.String("input-file", "", "Read input payload from file")
		timeout     = flag.Duration("timeout", 0, "Guest execution timeout (0 = none)")
		memPages    = flag.Uint("mem-pages", 0, "Memory limit in 64KiB pages (0 = engine default)")
		verbose     = flag.Bool("v", false, "Verbose engine logging")
		interactive = flag.Bool("i", false, "Interactive mode with TUI")
	)
	flag.Parse()

	if *wasmFile == "" {
		fmt.Fprintln(os.Stderr, "Usage: zomerun -wasm <file.wasm> -func <name> [-input json]")
		fmt.Fprintln(os.Stderr, "       zomerun -wasm <file.wasm> -i  (interactive mode)")
		os.Exit(1)
	}

	if *verbose {
		logger, err := zap.NewDevelopment()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer logger.Sync()
		ribosome.SetLogger(logger)
	}

	var opts []ribosome.Option
	opts = append(opts, ribosome.WithInvoker(consoleInvoker{}))
	if *timeout > 0 {
		opts = append(opts, ribosome.WithCallTimeout(*timeout))
	}
	if *memPages > 0 {
		opts = append(opts, ribosome.WithMemoryLimitPages(uint32(*memPages)))
	}

	if *interactive {
		if err := runInteractive(*wasmFile, *zomeName, opts); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if *funcName == "" {
		fmt.Fprintln(os.Stderr, "Error: -func is required (or use -i)")
		os.Exit(1)
	}

	if err := run(*wasmFile, *zomeName, *funcName, *inputStr, *inputFile, opts); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(wasmFile, zomeName, funcName, inputStr, inputFile string, opts []ribosome.Option) error {
	ctx := context.Background()

	bytecode, err := os.ReadFile(wasmFile)
	if err != nil {
		return fmt.Errorf("read wasm: %w", err)
	}

	input := []byte(inputStr)
	if inputFile != "" {
		input, err = os.ReadFile(inputFile)
		if err != nil {
			return fmt.Errorf("read input: %w", err)
		}
	}

	r := ribosome.New(opts...)
	outcome, err := r.Execute(ctx, zomeName, stderrHandle{}, bytecode,
		ribosome.Call{Zome: zomeName, Function: funcName}, input)
	if err != nil {
		return err
	}

	if outcome.Raw == nil {
		fmt.Println("null")
		return nil
	}

	pretty, err := json.MarshalIndent(outcome.Value, "", "  ")
	if err != nil {
		fmt.Println(string(outcome.Raw))
		return nil
	}
	fmt.Println(string(pretty))
	return nil
}

// stderrHandle routes the call's diagnostic line to stderr, keeping
// stdout clean for the outcome itself.
type stderrHandle struct{}

func (stderrHandle) Log(message string) {
	fmt.Fprintln(os.Stderr, message)
}

// consoleInvoker implements the debug capability by echoing the guest's
// payload to stderr. Every other capability has no body here and reports
// the unspecified failure word.
type consoleInvoker struct{}

func (consoleInvoker) Invoke(_ context.Context, state *ribosome.CallState, fn capability.Func, arg wire.Word) (wire.Word, error) {
	if fn != capability.Debug {
		return wire.Failure(wire.CodeUnspecified).Word(), nil
	}

	v := wire.Decode(arg)
	if v.Tag() != wire.TagData {
		return wire.Success().Word(), nil
	}

	alloc, err := wire.AllocationOf(v)
	if err != nil {
		return 0, err
	}
	data, err := state.Memory.Read(alloc)
	if err != nil {
		return 0, err
	}

	fmt.Fprintf(os.Stderr, "debug: %s\n", data)
	return wire.Success().Word(), nil
}
