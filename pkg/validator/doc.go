// Package validator validates request structs with go-playground/validator tags and
// reports failures as ValidationErrors keyed by JSON field path.
//
//	type request struct {
//		Template string `json:"template" validate:"required"`
//	}
//
//	if err := validator.Struct(req); err != nil {
//		if ve := validator.ExtractValidationErrors(err); ve != nil {
//			fields := ve.Fields() // {"template": ["is required"]}
//		}
//	}
//
// Each ValidationError also names the failed Rule ("required", "oneof", ...).
package validator
