package app

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// OtherInquiry is the course choice for requests not tied to a listed course.
const OtherInquiry = "기타 문의"

var (
	ErrPrivacyNotAgreed = errors.New("app: privacy policy not agreed")
	ErrInvalidRequest   = errors.New("app: invalid consultation request")
)

// ConsultRequest is a visitor's request to be called back about a course.
type ConsultRequest struct {
	Name   string `validate:"required"`
	Phone  string `validate:"required,min=9,max=20"`
	Course string `validate:"required"`
	Agreed bool
}

// Consultation is an accepted request. Course is the resolved course title.
type Consultation struct {
	ID     string
	Name   string
	Phone  string
	Course string
}

var validate = validator.New()

// RequestConsultation checks the privacy agreement before anything else,
// then the fields. Course may be a course id, a course title or
// OtherInquiry. Accepted requests are only logged.
func (c *Controller) RequestConsultation(_ context.Context, req ConsultRequest) (Consultation, error) {
	if !req.Agreed {
		return Consultation{}, ErrPrivacyNotAgreed
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Phone = strings.TrimSpace(req.Phone)
	req.Course = strings.TrimSpace(req.Course)
	if err := validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return Consultation{}, fmt.Errorf("%w: %s", ErrInvalidRequest, strings.ToLower(verrs[0].Field()))
		}
		return Consultation{}, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}

	title, ok := c.courseChoice(req.Course)
	if !ok {
		return Consultation{}, fmt.Errorf("%w: unknown course %q", ErrInvalidRequest, req.Course)
	}

	cons := Consultation{ID: uuid.NewString(), Name: req.Name, Phone: req.Phone, Course: title}
	c.log.WithFields(logrus.Fields{
		"id":     cons.ID,
		"name":   cons.Name,
		"phone":  cons.Phone,
		"course": cons.Course,
	}).Info("consultation requested")
	return cons, nil
}

func (c *Controller) courseChoice(v string) (string, bool) {
	if v == OtherInquiry {
		return OtherInquiry, true
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, course := range c.cat.Courses {
		if course.ID == v || course.Title == v {
			return course.Title, true
		}
	}
	return "", false
}
