//go:build !mupdf

package extract

import (
	"fmt"

	"github.com/cognicore/pdftopics/pkg/pdftopics/internalerr"
)

func newMuPDFBackend() (Backend, error) {
	return nil, fmt.Errorf("%w: extract method %q needs a build with -tags mupdf", internalerr.ErrInvalidConfig, MethodMuPDF)
}
