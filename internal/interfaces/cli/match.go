package cli

import (
	"github.com/spf13/cobra"

	"github.com/turtacn/KeyIP-Substructure/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/KeyIP-Substructure/pkg/errors"
	mtypes "github.com/turtacn/KeyIP-Substructure/pkg/types/molecule"
)

// pairFlags names the inputs of a single-target command.
type pairFlags struct {
	request string
	query   string
	target  string
	options optionFlags
}

func (p *pairFlags) register(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVarP(&p.request, "request", "r", "", "request file holding query, target and options")
	f.StringVarP(&p.query, "query", "q", "", "query graph file (JSON or YAML, - for stdin)")
	f.StringVarP(&p.target, "target", "t", "", "target molecule file (JSON or YAML, - for stdin)")
	cmd.MarkFlagsMutuallyExclusive("request", "query")
	cmd.MarkFlagsMutuallyExclusive("request", "target")
	p.options.register(cmd)
}

// load builds the request from either --request or --query plus --target.
func (p *pairFlags) load(cmd *cobra.Command) (*mtypes.MatchRequestDTO, error) {
	req := &mtypes.MatchRequestDTO{}
	switch {
	case p.request != "":
		if err := readDocument(cmd, p.request, req); err != nil {
			return nil, err
		}
	case p.query != "" && p.target != "":
		if p.query == "-" && p.target == "-" {
			return nil, errors.InvalidParam("only one of --query and --target may read stdin")
		}
		if err := readDocument(cmd, p.query, &req.Query); err != nil {
			return nil, err
		}
		if err := readDocument(cmd, p.target, &req.Target); err != nil {
			return nil, err
		}
	default:
		return nil, errors.InvalidParam("either --request or both --query and --target must be provided")
	}
	req.Options = p.options.apply(cmd, req.Options)
	return req, nil
}

// NewMatchCmd creates the match command.
func NewMatchCmd() *cobra.Command {
	flags := &pairFlags{}
	cmd := &cobra.Command{
		Use:   "match",
		Short: "Enumerate the embeddings of a query in one target molecule",
		Example: `  keyip match --query hydroxyl.yaml --target ethanol.json
  keyip match -r request.yaml --unique atoms -o json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			req, err := flags.load(cmd)
			if err != nil {
				return err
			}
			ctx, cancel := cliCtx.operationContext(cmd.Context())
			defer cancel()

			res, err := cliCtx.Service.Match(ctx, req)
			if err != nil {
				cliCtx.Logger.Error("match failed", logging.Err(err))
				return err
			}
			cliCtx.Logger.Debug("match completed", logging.Int("count", res.Count))
			return PrintResult(cmd, matchView{res})
		},
	}
	flags.register(cmd)
	return cmd
}

// NewAnchorsCmd creates the anchors command.
func NewAnchorsCmd() *cobra.Command {
	flags := &pairFlags{}
	cmd := &cobra.Command{
		Use:   "anchors",
		Short: "List the target atoms that can host query atom 0",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			req, err := flags.load(cmd)
			if err != nil {
				return err
			}
			ctx, cancel := cliCtx.operationContext(cmd.Context())
			defer cancel()

			res, err := cliCtx.Service.Anchors(ctx, &mtypes.AnchorRequestDTO{
				Query:   req.Query,
				Target:  req.Target,
				Options: req.Options,
			})
			if err != nil {
				cliCtx.Logger.Error("anchor search failed", logging.Err(err))
				return err
			}
			return PrintResult(cmd, anchorView{res})
		},
	}
	flags.register(cmd)
	return cmd
}
