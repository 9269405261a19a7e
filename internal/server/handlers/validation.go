package handlers

import (
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/mamadbah2/warehouse/internal/domain/models"
)

var registerOnce sync.Once

// RegisterValidators adds the warehouse binding tags to Gin's validator and
// reports field errors under their JSON names. Safe to call more than once.
func RegisterValidators() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}

		_ = v.RegisterValidation("inbound_status", validateInboundStatus)
		_ = v.RegisterValidation("record_status", validateRecordStatus)

		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				return fld.Name
			}
			return name
		})
	})
}

func validateInboundStatus(fl validator.FieldLevel) bool {
	return models.InboundStatus(fl.Field().String()).Valid()
}

func validateRecordStatus(fl validator.FieldLevel) bool {
	switch models.RecordStatus(fl.Field().String()) {
	case models.RecordInWarehouse, models.RecordOutOfWarehouse:
		return true
	}
	return false
}
