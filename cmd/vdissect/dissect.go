package main

import (
	"context"
	"encoding/binary"
	"fmt"
	"github.com/spf13/cobra"
	"github.com/vuuvv/errors"
	"github.com/vuuvv/vdissect"
	"github.com/vuuvv/vdissect/utils"
	"io"
	"os"
	"path/filepath"
)

var (
	direction  string
	decompress bool
	scriptFile string
	literal    string
)

var dissectCmd = &cobra.Command{
	Use:   "dissect [packet-file|-]",
	Short: "Print the structural report of one packet",
	Long: `Read a raw packet from a file, stdin ("-") or the --bytes literal and print
its report. Literals are whitespace separated: bare hex (05000000), typed
values such as d4'5' (4-byte little-endian decimal) or s'text'.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runDissect(cmd.Context(), cmd.OutOrStdout(), args)
	},
}

func init() {
	dissectCmd.Flags().StringVarP(&direction, "direction", "d", "server", "packet direction: client|server")
	dissectCmd.Flags().BoolVarP(&decompress, "decompress", "z", false, "inflate the payload before dissecting")
	dissectCmd.Flags().StringVarP(&scriptFile, "script", "s", "", "use this script instead of looking it up by opcode")
	dissectCmd.Flags().StringVarP(&literal, "bytes", "x", "", "packet bytes as literals")
}

func readPacket(args []string) ([]byte, error) {
	if literal != "" {
		return utils.ParsePacket(literal, binary.LittleEndian)
	}
	if len(args) == 0 {
		return nil, errors.New("no packet given, pass a file, '-' or --bytes")
	}
	if args[0] == "-" {
		data, err := io.ReadAll(os.Stdin)
		return data, errors.WithStack(err)
	}
	data, err := os.ReadFile(args[0])
	return data, errors.WithStack(err)
}

func runDissect(ctx context.Context, out io.Writer, args []string) error {
	dir, ok := vdissect.ParseDirection(direction)
	if !ok {
		return errors.Errorf("unknown direction '%s'", direction)
	}
	data, err := readPacket(args)
	if err != nil {
		return err
	}
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	engine, err := vdissect.NewEngine(cfg)
	if err != nil {
		return err
	}
	defer func() {
		_ = engine.Close()
	}()

	d, err := engine.Open(data, dir)
	if err != nil {
		return err
	}
	if decompress {
		if err = d.Decompress(); err != nil {
			return err
		}
	}

	if ctx == nil {
		ctx = context.Background()
	}
	var report *vdissect.Report
	if scriptFile != "" {
		var body []byte
		body, err = os.ReadFile(scriptFile)
		if err != nil {
			return errors.WithStack(err)
		}
		report, err = d.DissectWith(ctx, filepath.Base(scriptFile), body)
	} else {
		report, err = d.Dissect(ctx)
	}
	if report != nil {
		fmt.Fprint(out, report.Text)
	}
	return err
}
