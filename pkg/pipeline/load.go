package pipeline

import (
	"os"

	"github.com/matzehuels/squaremap/pkg/errors"
	"github.com/matzehuels/squaremap/pkg/holdings"
)

// Load reads the holdings file named by opts.Input. opts.Format, when set,
// overrides detection by file extension.
func Load(opts Options) (holdings.File, error) {
	if opts.Input == "" {
		return holdings.File{}, errors.New(errors.ErrCodeInvalidInput, "input file is required")
	}
	if opts.Format == "" {
		return holdings.ReadFile(opts.Input)
	}

	data, err := os.ReadFile(opts.Input)
	if err != nil {
		if os.IsNotExist(err) {
			return holdings.File{}, errors.Wrap(errors.ErrCodeFileNotFound, err, "read %s", opts.Input)
		}
		return holdings.File{}, err
	}
	return holdings.Parse(data, opts.Format)
}
