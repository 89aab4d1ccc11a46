package main

import (
	"fmt"
	"github.com/spf13/cobra"
	"github.com/vuuvv/errors"
	"github.com/vuuvv/vdissect"
	"github.com/vuuvv/vdissect/artifact"
	"github.com/vuuvv/vdissect/core"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

var checkCmd = &cobra.Command{
	Use:   "check [script|dir]...",
	Short: "Compile dissection scripts without running them",
	Long: `Compile every given script, or every script under the given directories
(default: the configured scripts root), and report the ones that fail.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCheck(cmd.OutOrStdout(), args)
	},
}

func runCheck(out io.Writer, args []string) error {
	vdissect.Setup()
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if len(args) == 0 {
		args = []string{cfg.ScriptsDir}
	}

	// 只编译不执行, 产物输出不会被调用
	binding, err := core.NewBinding(&core.Artifacts{
		Blobs: artifact.NewBlobDir(os.TempDir()),
		Rows:  artifact.NewSQLFile(os.TempDir()),
	})
	if err != nil {
		return err
	}
	limits := core.ProgramLimits{CostLimit: cfg.CostLimit}

	failed := 0
	total := 0
	for _, arg := range args {
		files, err := collectScripts(arg, cfg.ScriptExt)
		if err != nil {
			return err
		}
		for _, file := range files {
			total++
			body, err := os.ReadFile(file)
			if err != nil {
				return errors.WithStack(err)
			}
			if _, err = core.CompileScript(file, body, binding, limits); err != nil {
				failed++
				fmt.Fprintf(out, "FAIL %s\n", err)
				continue
			}
			fmt.Fprintf(out, "ok   %s\n", file)
		}
	}
	if failed > 0 {
		return errors.Errorf("%d of %d scripts failed", failed, total)
	}
	return nil
}

func collectScripts(path string, ext string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	if !info.IsDir() {
		return []string{path}, nil
	}
	var files []string
	err = filepath.WalkDir(path, func(p string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !entry.IsDir() && strings.EqualFold(filepath.Ext(p), ext) {
			files = append(files, p)
		}
		return nil
	})
	return files, errors.WithStack(err)
}
