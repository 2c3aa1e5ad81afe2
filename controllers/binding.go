package controllers

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/homehelp/homehelp-api/apperror"
)

// bindJSON decodes the request body into req. Failed `binding:"required"`
// rules become MissingFields; anything else is InvalidInput.
func bindJSON(c *gin.Context, req interface{}) error {
	if err := c.ShouldBindJSON(req); err != nil {
		return bindingError(err)
	}
	return nil
}

// bindQuery decodes the query string into req
func bindQuery(c *gin.Context, req interface{}) error {
	if err := c.ShouldBindQuery(req); err != nil {
		return bindingError(err)
	}
	return nil
}

func bindingError(err error) error {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		for _, fe := range validationErrs {
			if fe.Tag() != "required" {
				return apperror.Wrap(apperror.InvalidInput, "Invalid "+fe.Field(), err)
			}
		}
		return apperror.Wrap(apperror.MissingFields, "Missing fields", err)
	}
	return apperror.Wrap(apperror.InvalidInput, "Invalid request body", err)
}

// paramID parses a positive integer path parameter
func paramID(c *gin.Context, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, apperror.New(apperror.InvalidInput, "Invalid "+name)
	}
	return uint(id), nil
}
