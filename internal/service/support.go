package service

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/citysafe/inspection-backend/internal/common"
	"github.com/citysafe/inspection-backend/internal/domain"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Clock supplies the current instant and the business time zone
type Clock struct {
	Now      func() time.Time
	Location *time.Location
}

// NewClock returns a wall clock in loc
func NewClock(loc *time.Location) Clock {
	return Clock{Now: time.Now, Location: loc}
}

// Today calendar date in the business time zone, in stored DATE form
func (c Clock) Today() time.Time {
	return domain.DateOf(c.Now(), c.Location)
}

var (
	overdueSwept = promauto.NewCounter(prometheus.CounterOpts{
		Name: "workorder_overdue_swept_total",
		Help: "Work orders moved to overdue by the deadline sweep",
	})
	escalations = promauto.NewCounter(prometheus.CounterOpts{
		Name: "workorder_escalations_total",
		Help: "Work orders put under supervision",
	})
	notificationsSent = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "workorder_notifications_total",
		Help: "Supervision and transfer notifications by result",
	}, []string{"result"})
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// validateStruct wraps validation failures in common.ErrInvalidInput
func validateStruct(s interface{}) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var ve validator.ValidationErrors
	if errors.As(err, &ve) && len(ve) > 0 {
		fe := ve[0]
		return fmt.Errorf("%w: field '%s' failed '%s'", common.ErrInvalidInput, fe.Field(), fe.Tag())
	}
	return fmt.Errorf("%w: %v", common.ErrInvalidInput, err)
}

func normalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 10
	}
	return page, limit
}
