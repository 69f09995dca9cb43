package store

import (
	"fmt"
	"net/http"

	"github.com/sf1tzp/symbology-sub000/orm"
)

func invalidInput(reason string) error {
	return &ServiceError{
		Status:  http.StatusBadRequest,
		Message: reason,
		Inner:   &orm.BadInputError{Reason: reason},
	}
}

func validateCreateArtifactInput(input CreateArtifactInput) error {
	// An artifact is company-scoped, group-scoped or unscoped; both scopes
	// at once has no meaning downstream.
	if input.Ticker != "" && input.CompanyGroupID != nil {
		return invalidInput("artifact cannot be scoped to both a company and a group")
	}

	if input.Stage != nil && !orm.KnownStage(*input.Stage) {
		return invalidInput(fmt.Sprintf("unknown stage %q", *input.Stage))
	}

	if input.FormType != nil && *input.FormType != "" &&
		(input.DocumentType == nil || *input.DocumentType == "") {
		return invalidInput("form type requires a document type")
	}

	if input.Body == "" && input.Summary == "" && input.Description == "" {
		return invalidInput("artifact must carry body, summary or description")
	}

	return nil
}
