package cli

import (
	"github.com/spf13/cobra"

	"github.com/turtacn/KeyIP-Substructure/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/KeyIP-Substructure/pkg/errors"
	mtypes "github.com/turtacn/KeyIP-Substructure/pkg/types/molecule"
)

// NewScreenCmd creates the screen command.
func NewScreenCmd() *cobra.Command {
	var (
		queryPath   string
		libraryPath string
		countHits   bool
		options     optionFlags
	)
	cmd := &cobra.Command{
		Use:   "screen",
		Short: "Report which molecules of a library contain the query",
		Example: `  keyip screen --query hydroxyl.yaml --library solvents.yaml
  keyip screen -q amide.json -l library.json --count -o json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			if queryPath == "-" && libraryPath == "-" {
				return errors.InvalidParam("only one of --query and --library may read stdin")
			}
			req := &mtypes.ScreenRequestDTO{CountHits: countHits}
			if err := readDocument(cmd, queryPath, &req.Query); err != nil {
				return err
			}
			if req.Library, err = readLibrary(cmd, libraryPath); err != nil {
				return err
			}
			req.Options = options.apply(cmd, req.Options)

			ctx, cancel := cliCtx.operationContext(cmd.Context())
			defer cancel()

			res, err := cliCtx.Service.Screen(ctx, req)
			if err != nil {
				cliCtx.Logger.Error("screening failed", logging.Err(err))
				return err
			}
			return PrintResult(cmd, screenView{res})
		},
	}
	f := cmd.Flags()
	f.StringVarP(&queryPath, "query", "q", "", "query graph file (JSON or YAML, - for stdin)")
	f.StringVarP(&libraryPath, "library", "l", "", "library file: a list of molecules or {molecules: [...]}")
	f.BoolVar(&countHits, "count", false, "count unique atom sets per hit")
	_ = cmd.MarkFlagRequired("query")
	_ = cmd.MarkFlagRequired("library")
	options.register(cmd)
	return cmd
}
