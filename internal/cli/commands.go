package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rhino2rhonda/sfs/internal/version"
	"github.com/rhino2rhonda/sfs/pkg/core"
	"github.com/rhino2rhonda/sfs/pkg/errors"
	"github.com/rhino2rhonda/sfs/pkg/filesystem"
	"github.com/rhino2rhonda/sfs/pkg/logging"
	"github.com/rhino2rhonda/sfs/pkg/types"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// NewRootCmd creates and returns the root command
func NewRootCmd() *cobra.Command {
	var verbosity int
	fsys := filesystem.NewOS()

	rootCmd := &cobra.Command{
		Use:   "sfs",
		Short: MsgRootShort,
		Long: `sfs manages synthetic filesystems: directories that mirror external
"collections" of real files as trees of symbolic links. Collections are
synchronized on demand, dangling links can be reclaimed, and any link or
directory can be queried for its source and statistics.

Concurrent use of one SFS root from multiple processes is not guarded.`,
		Version: version.Version,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.SetupLogger(verbosity)
			log.Debug().Str("command", cmd.Name()).Msg("Command started")
		},
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		DisableAutoGenTag: true,
	}

	// Cobra's Printf helpers default to stderr; user-facing output
	// belongs on stdout. Tests replace this writer to capture output.
	rootCmd.SetOut(os.Stdout)

	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v", MsgFlagVerbose)

	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newInitCmd(fsys))
	rootCmd.AddCommand(newIsSfsCmd(fsys))
	rootCmd.AddCommand(newAddCollectionCmd(fsys))
	rootCmd.AddCommand(newIsCollectionCmd(fsys))
	rootCmd.AddCommand(newListCollectionsCmd(fsys))
	rootCmd.AddCommand(newSyncCollectionCmd(fsys))
	rootCmd.AddCommand(newDelCollectionCmd(fsys))
	rootCmd.AddCommand(newReclaimOrphansCmd(fsys))
	rootCmd.AddCommand(newQueryCmd(fsys))

	return rootCmd
}

// requireSFS resolves the SFS enclosing path, failing with a validation
// error when there is none.
func requireSFS(fsys types.FS, path string) (*core.SFS, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, errors.WrapInternal(err, errors.ErrInternal, "cannot resolve path")
	}
	s, err := core.GetByPath(fsys, abs)
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, errors.NewValidationf(errors.ErrNotInSFS, "%q is not inside an SFS", abs)
	}
	return s, nil
}

// pathOrCwd resolves the --path flag, defaulting to the working directory.
func pathOrCwd(path string) (string, error) {
	if path == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return "", errors.WrapInternal(err, errors.ErrInternal, "cannot determine working directory")
		}
		return cwd, nil
	}
	return filepath.Abs(path)
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: MsgVersionShort,
		Long:  MsgVersionLong,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf(MsgVersionFormat, version.Version)
			if version.Commit != "" {
				fmt.Printf(MsgCommitFormat, version.Commit)
			}
			if version.Date != "" {
				fmt.Printf(MsgBuiltFormat, version.Date)
			}
		},
	}
}

func newInitCmd(fsys types.FS) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: MsgInitShort,
		Long: `Initialize the current directory as a new SFS root. The directory must
be empty and must not be nested inside an existing SFS.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cwd, err := os.Getwd()
			if err != nil {
				return errors.WrapInternal(err, errors.ErrInternal, "cannot determine working directory")
			}
			return core.Init(fsys, cwd)
		},
	}
}

func newIsSfsCmd(fsys types.FS) *cobra.Command {
	var path string
	cmd := &cobra.Command{
		Use:   "is-sfs",
		Short: MsgIsSfsShort,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			target, err := pathOrCwd(path)
			if err != nil {
				return err
			}
			s, err := core.GetByPath(fsys, target)
			if err != nil {
				return err
			}
			if s == nil {
				cmd.Printf(MsgIsSfsNo)
				return nil
			}
			cmd.Printf(MsgIsSfsYes, s.Root())
			return nil
		},
	}
	cmd.Flags().StringVar(&path, "path", "", MsgFlagPath)
	return cmd
}

func newAddCollectionCmd(fsys types.FS) *cobra.Command {
	var name string
	cmd := &cobra.Command{
		Use:   "add-collection ROOT",
		Short: MsgAddCollectionShort,
		Long: `Register ROOT as a collection of the enclosing SFS and build its mirror
link tree by running an initial synchronization.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := requireSFS(fsys, ".")
			if err != nil {
				return err
			}
			root, err := filepath.Abs(args[0])
			if err != nil {
				return errors.WrapInternal(err, errors.ErrInternal, "cannot resolve path")
			}
			colName := name
			if colName == "" {
				colName = filepath.Base(root)
			}
			updates, err := s.AddCollection(colName, root)
			if err != nil {
				return err
			}
			cmd.Printf(MsgLinksAdded, updates.Added)
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", MsgFlagName)
	return cmd
}

func newIsCollectionCmd(fsys types.FS) *cobra.Command {
	return &cobra.Command{
		Use:   "is-collection PATH",
		Short: MsgIsCollectionShort,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := requireSFS(fsys, ".")
			if err != nil {
				return err
			}
			path, err := filepath.Abs(args[0])
			if err != nil {
				return errors.WrapInternal(err, errors.ErrInternal, "cannot resolve path")
			}
			col, ok := s.CollectionByPath(path)
			if !ok {
				cmd.Printf(MsgIsCollectionNo)
				return nil
			}
			cmd.Printf(MsgIsCollectionYes, col.Root())
			return nil
		},
	}
}

func newListCollectionsCmd(fsys types.FS) *cobra.Command {
	return &cobra.Command{
		Use:   "list-collections",
		Short: MsgListCollectionsShort,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := requireSFS(fsys, ".")
			if err != nil {
				return err
			}
			cols := s.Collections()
			if len(cols) == 0 {
				cmd.Printf(MsgNoCollections)
				return nil
			}
			cmd.Printf(MsgCollectionCount, len(cols))
			for _, col := range cols {
				cmd.Printf(MsgCollectionItem, col.Name(), col.Root())
			}
			return nil
		},
	}
}

func newSyncCollectionCmd(fsys types.FS) *cobra.Command {
	return &cobra.Command{
		Use:   "sync-collection NAME",
		Short: MsgSyncCollectionShort,
		Long: `Synchronize the named collection's mirror with its source tree, then
reclaim orphan links left inside that mirror.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := requireSFS(fsys, ".")
			if err != nil {
				return err
			}
			col, ok := s.CollectionByName(args[0])
			if !ok {
				return errors.NewValidationf(errors.ErrUnknownCollection, "no collection named %q", args[0])
			}
			synced, err := col.Update()
			if err != nil {
				return err
			}
			reclaimed, err := s.DelOrphansIn(col.Root())
			if err != nil {
				return err
			}
			total := synced.Combine(reclaimed)
			cmd.Printf(MsgLinksAdded, total.Added)
			cmd.Printf(MsgLinksUpdated, total.Updated)
			cmd.Printf(MsgLinksDeleted, total.Deleted)
			return nil
		},
	}
}

func newDelCollectionCmd(fsys types.FS) *cobra.Command {
	return &cobra.Command{
		Use:   "delete-collection NAME",
		Short: MsgDelCollectionShort,
		Long: `Remove the named collection's registration and mirror subtree, then
reclaim any orphan links left behind in the SFS tree.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := requireSFS(fsys, ".")
			if err != nil {
				return err
			}
			if err := s.DelCollection(args[0]); err != nil {
				return err
			}
			reclaimed, err := s.DelOrphans()
			if err != nil {
				return err
			}
			cmd.Printf(MsgLinksDeleted, reclaimed.Deleted)
			return nil
		},
	}
}

func newReclaimOrphansCmd(fsys types.FS) *cobra.Command {
	return &cobra.Command{
		Use:   "reclaim-orphans",
		Short: MsgReclaimShort,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := requireSFS(fsys, ".")
			if err != nil {
				return err
			}
			reclaimed, err := s.DelOrphans()
			if err != nil {
				return err
			}
			cmd.Printf(MsgLinksDeleted, reclaimed.Deleted)
			return nil
		},
	}
}

func newQueryCmd(fsys types.FS) *cobra.Command {
	var path string
	cmd := &cobra.Command{
		Use:   "query",
		Short: MsgQueryShort,
		Long: `Resolve a path inside the SFS. Links report their owning collection,
source path and last synchronized stats; directories report aggregate
link classifications, file counts and sizes.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			target, err := pathOrCwd(path)
			if err != nil {
				return err
			}
			s, err := requireSFS(fsys, target)
			if err != nil {
				return err
			}
			res, err := s.Query(target)
			if err != nil {
				return err
			}
			printQueryResult(cmd, res)
			return nil
		},
	}
	cmd.Flags().StringVar(&path, "path", "", MsgFlagPath)
	return cmd
}
