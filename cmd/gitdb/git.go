package main

import (
	"github.com/coreyw/gitdb/env"
	"github.com/coreyw/gitdb/internal/pathutil"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// globalFlags represents the flags shared by every subcommand
type globalFlags struct {
	// C is a simpler version of git's -C:
	// https://git-scm.com/docs/git#Documentation/git.txt--Cltpathgt
	C pflag.Value

	GitDir   string
	WorkTree string
	Bare     bool

	env *env.Env
}

func newRootCmd(cwd string, e *env.Env) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "gitdb",
		Short:         "git object database implementation in pure Go",
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	cfg := &globalFlags{
		env: e,
	}
	cfg.C = pathutil.NewDirPathFlagWithDefault(cwd)
	cmd.PersistentFlags().VarP(cfg.C, "C", "C", "Run as if gitdb was started in the provided path instead of the current working directory.")
	cmd.PersistentFlags().StringVar(&cfg.GitDir, "git-dir", e.Get("GIT_DIR"), "Set the path to the repository's .git directory.")
	cmd.PersistentFlags().StringVar(&cfg.WorkTree, "work-tree", e.Get("GIT_WORK_TREE"), "Set the path to the working tree.")
	cmd.PersistentFlags().BoolVar(&cfg.Bare, "bare", false, "Treat the repository as bare, ignoring any working tree.")

	// porcelain
	cmd.AddCommand(newInitCmd(cfg))

	// plumbing
	cmd.AddCommand(newCatFileCmd(cfg))
	cmd.AddCommand(newHashObjectCmd())

	return cmd
}
