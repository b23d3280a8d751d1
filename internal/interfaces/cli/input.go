package cli

import (
	"io"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/turtacn/KeyIP-Substructure/pkg/errors"
	mtypes "github.com/turtacn/KeyIP-Substructure/pkg/types/molecule"
)

// readDocument decodes a JSON or YAML file into v.  "-" reads stdin.
func readDocument(cmd *cobra.Command, path string, v interface{}) error {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return errors.InvalidParam("cannot read input file").WithDetailf("path=%s", path).WithCause(err)
	}
	if err := yaml.Unmarshal(data, v); err != nil {
		return errors.New(errors.ErrCodeSerialization, "cannot decode input file").WithDetailf("path=%s", path).WithCause(err)
	}
	return nil
}

// readLibrary accepts either a bare list of molecules or a document with a
// top-level "molecules" list.
func readLibrary(cmd *cobra.Command, path string) ([]mtypes.MoleculeGraphDTO, error) {
	var doc yaml.Node
	if err := readDocument(cmd, path, &doc); err != nil {
		return nil, err
	}
	root := &doc
	if root.Kind == yaml.DocumentNode && len(root.Content) > 0 {
		root = root.Content[0]
	}
	var lib []mtypes.MoleculeGraphDTO
	switch root.Kind {
	case yaml.SequenceNode:
		if err := root.Decode(&lib); err != nil {
			return nil, errors.New(errors.ErrCodeSerialization, "cannot decode library").WithDetailf("path=%s", path).WithCause(err)
		}
	case yaml.MappingNode:
		var wrapped struct {
			Molecules []mtypes.MoleculeGraphDTO `yaml:"molecules"`
		}
		if err := root.Decode(&wrapped); err != nil {
			return nil, errors.New(errors.ErrCodeSerialization, "cannot decode library").WithDetailf("path=%s", path).WithCause(err)
		}
		lib = wrapped.Molecules
	default:
		return nil, errors.InvalidParam("library must be a list of molecules").WithDetailf("path=%s", path)
	}
	return lib, nil
}

// optionFlags binds the match option flags shared by every command.
type optionFlags struct {
	algorithm  string
	mode       string
	unique     string
	limit      int
	stereo     bool
	components bool
}

func (o *optionFlags) register(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVar(&o.algorithm, "algorithm", "", "matching algorithm: frontier|refinement|depthfirst (default from config)")
	f.StringVar(&o.mode, "mode", "", "matching mode: subgraph|exact (default from config)")
	f.StringVar(&o.unique, "unique", "", "deduplicate mappings: none|atoms|bonds")
	f.IntVar(&o.limit, "limit", 0, "stop after this many mappings (0 means no limit)")
	f.BoolVar(&o.stereo, "stereo", false, "enforce tetrahedral and double-bond stereo")
	f.BoolVar(&o.components, "components", false, "enforce query fragment groups")
}

// apply overlays the flags that were set on base, so flags win over options
// read from a request file.
func (o *optionFlags) apply(cmd *cobra.Command, base mtypes.MatchOptionsDTO) mtypes.MatchOptionsDTO {
	f := cmd.Flags()
	if f.Changed("algorithm") {
		base.Algorithm = o.algorithm
	}
	if f.Changed("mode") {
		base.Mode = o.mode
	}
	if f.Changed("unique") {
		base.Unique = mtypes.UniqueMode(o.unique)
	}
	if f.Changed("limit") {
		base.Limit = o.limit
	}
	if f.Changed("stereo") {
		base.Stereo = o.stereo
	}
	if f.Changed("components") {
		base.Components = o.components
	}
	return base
}
