package cli

import (
	stderrors "errors"
	"fmt"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"
	"github.com/pterm/pterm"
	"github.com/rhino2rhonda/sfs/pkg/core"
	"github.com/rhino2rhonda/sfs/pkg/errors"
	"github.com/spf13/cobra"
)

// isTerminal reports whether stdout is a terminal; formatting is only
// applied interactively.
func isTerminal() bool {
	return isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
}

// formatBold returns the string formatted as bold using pterm
func formatBold(s string) string {
	if !isTerminal() {
		return s
	}
	return pterm.Bold.Sprint(s)
}

// formatSize renders a byte count for humans.
func formatSize(size int64) string {
	if size < 0 {
		size = 0
	}
	return humanize.Bytes(uint64(size))
}

// formatTime renders a change time the way ls and ctime do.
func formatTime(t time.Time) string {
	return t.Format(time.ANSIC)
}

// printQueryResult renders either link info or directory statistics.
func printQueryResult(cmd *cobra.Command, res core.QueryResult) {
	if res.Link != nil {
		cmd.Printf(MsgQueryCollection, formatBold(res.Link.Collection))
		cmd.Printf(MsgQuerySource, res.Link.SourcePath)
		cmd.Printf(MsgQueryCtime, formatTime(res.Link.Stats.Ctime))
		cmd.Printf(MsgQuerySize, formatSize(res.Link.Stats.Size))
		return
	}

	dir := res.Dir
	cmd.Printf(MsgQuerySize, formatSize(dir.Size))
	cmd.Printf(MsgQueryCtime, formatTime(dir.Ctime))
	cmd.Printf(MsgQueryActive, dir.ActiveLinks)
	cmd.Printf(MsgQueryForeign, dir.ForeignLinks)
	cmd.Printf(MsgQueryOrphan, dir.OrphanLinks)
	cmd.Printf(MsgQueryFiles, dir.Files)
	cmd.Printf(MsgQuerySubDirs, dir.SubDirectories)
}

// RenderError formats an error for the terminal with its failure-kind
// prefix. Unknown errors render without their message, which may be
// arbitrary internal detail.
func RenderError(err error) string {
	var msg string
	switch errors.GetKind(err) {
	case errors.KindValidation:
		msg = fmt.Sprintf("%s %s", MsgErrValidation, sfsMessage(err))
	case errors.KindInternal:
		msg = fmt.Sprintf("%s %s", MsgErrInternal, sfsMessage(err))
	default:
		msg = MsgErrUnknown
	}
	if isatty.IsTerminal(os.Stderr.Fd()) {
		return pterm.FgRed.Sprint(msg)
	}
	return msg
}

// sfsMessage extracts the structured message, falling back to Error().
func sfsMessage(err error) string {
	var sfsErr *errors.SfsError
	if stderrors.As(err, &sfsErr) {
		return sfsErr.Message
	}
	return err.Error()
}
