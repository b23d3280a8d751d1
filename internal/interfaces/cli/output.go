package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	mtypes "github.com/turtacn/KeyIP-Substructure/pkg/types/molecule"
)

// view is a command result that knows its structured payload and how to draw
// itself for a terminal.
type view interface {
	payload() interface{}
	renderText(w io.Writer) error
}

// PrintResult outputs data in the format specified by CLIContext.
func PrintResult(cmd *cobra.Command, data interface{}) error {
	format := "json"
	if cliCtx, err := GetCLIContext(cmd); err == nil {
		format = cliCtx.OutputFormat
	}
	out := cmd.OutOrStdout()

	v, isView := data.(view)
	if isView && format != "text" {
		data = v.payload()
	}
	switch format {
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(data)
	case "yaml":
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		if err := enc.Encode(data); err != nil {
			return err
		}
		return enc.Close()
	}
	if isView {
		return v.renderText(out)
	}
	switch t := data.(type) {
	case string:
		_, err := fmt.Fprintln(out, t)
		return err
	case fmt.Stringer:
		_, err := fmt.Fprintln(out, t.String())
		return err
	default:
		_, err := fmt.Fprintf(out, "%+v\n", t)
		return err
	}
}

// PrintError writes a formatted error message to stderr.
func PrintError(cmd *cobra.Command, err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "%s %s\n", color.RedString("Error:"), err.Error())
}

func verdict(ok bool) string {
	if ok {
		return color.GreenString("MATCH")
	}
	return color.YellowString("NO MATCH")
}

func formatInts(v []int) string {
	parts := make([]string, len(v))
	for i, n := range v {
		parts[i] = strconv.Itoa(n)
	}
	return strings.Join(parts, " ")
}

// formatMap renders a query-to-target map in query index order.
func formatMap(m map[int]int) string {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%d>%d", k, m[k])
	}
	return strings.Join(parts, " ")
}

type matchView struct{ res *mtypes.MatchResultDTO }

func (v matchView) payload() interface{} { return v.res }

func (v matchView) renderText(w io.Writer) error {
	r := v.res
	fmt.Fprintf(w, "%s  %d mapping(s)  algorithm=%s mode=%s unique=%s\n", verdict(r.Matched), r.Count, r.Algorithm, r.Mode, r.Unique)
	if r.Count == 0 {
		return nil
	}
	table := tablewriter.NewTable(w)
	table.Header("#", "Atoms (query>target)", "Bonds (query>target)")
	for i := range r.Mappings {
		row := []string{strconv.Itoa(i + 1), formatInts(r.Mappings[i]), ""}
		if i < len(r.AtomMaps) {
			row[1] = formatMap(r.AtomMaps[i])
		}
		if i < len(r.BondMaps) {
			row[2] = formatMap(r.BondMaps[i])
		}
		if err := table.Append(row); err != nil {
			return err
		}
	}
	if err := table.Render(); err != nil {
		return err
	}
	if r.Truncated {
		fmt.Fprintln(w, color.YellowString("result truncated at %d mappings", r.Count))
	}
	return nil
}

type anchorView struct{ res *mtypes.AnchorResultDTO }

func (v anchorView) payload() interface{} { return v.res }

func (v anchorView) renderText(w io.Writer) error {
	if v.res.Count == 0 {
		_, err := fmt.Fprintln(w, verdict(false))
		return err
	}
	_, err := fmt.Fprintf(w, "%s  %d anchor(s): %s\n", verdict(true), v.res.Count, formatInts(v.res.Anchors))
	return err
}

type screenView struct{ res *mtypes.ScreenResultDTO }

func (v screenView) payload() interface{} { return v.res }

func (v screenView) renderText(w io.Writer) error {
	r := v.res
	fmt.Fprintf(w, "job %s: %d of %d molecule(s) matched  algorithm=%s cache_hits=%d\n",
		r.JobID, r.HitCount, r.Screened, r.Algorithm, r.CacheHits)
	if r.HitCount == 0 {
		return nil
	}
	table := tablewriter.NewTable(w)
	table.Header("Index", "ID", "Name", "Matches", "Cached")
	for _, h := range r.Hits {
		count := "-"
		if h.MatchCount > 0 {
			count = strconv.Itoa(h.MatchCount)
		}
		cached := ""
		if h.Cached {
			cached = color.CyanString("yes")
		}
		if err := table.Append([]string{strconv.Itoa(h.Index), h.MoleculeID, h.Name, count, cached}); err != nil {
			return err
		}
	}
	return table.Render()
}
