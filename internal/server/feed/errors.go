package feed

import (
	"fmt"

	"github.com/dmitrijs2005/logitrack/internal/common"
)

type UnknownCollectionError struct {
	Name string
}

func (e *UnknownCollectionError) Error() string {
	return fmt.Sprintf("unknown collection %q", e.Name)
}

func (e *UnknownCollectionError) Unwrap() error {
	return common.ErrorValidation
}
