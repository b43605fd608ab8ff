package tutor

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
)

// User-facing replies. Failure details are logged, never shown.
const (
	MsgConnectionProblem = "연결에 문제가 발생했습니다. 네트워크 상태를 확인해 주세요."
	MsgNoAnswer          = "죄송합니다. 답변을 생성하지 못했습니다. 다시 시도해 주세요."
)

type Generator interface {
	Generate(ctx context.Context, req Request) (string, error)
}

type Reply struct {
	Text   string
	Failed bool
}

type Assistant struct {
	gen Generator
	log logrus.FieldLogger
}

func NewAssistant(gen Generator, log logrus.FieldLogger) *Assistant {
	return &Assistant{gen: gen, log: log}
}

// Greeting is the assistant's opening line for a lesson.
func Greeting(courseTitle, lesson string) string {
	return fmt.Sprintf("반가워요! 저는 여러분의 AI 학습 도우미입니다. 현재 %q 강의를 수강 중이시네요. %q 단원과 관련해 궁금한 점이 있다면 무엇이든 물어보세요!", courseTitle, lesson)
}

// Ask returns the model's answer, or one of the fixed messages above.
// A blank message is not sent.
func (a *Assistant) Ask(ctx context.Context, req Request) Reply {
	req.Message = strings.TrimSpace(req.Message)
	if req.Message == "" {
		return Reply{}
	}

	text, err := a.gen.Generate(ctx, req)
	switch {
	case errors.Is(err, ErrEmptyAnswer):
		return Reply{Text: MsgNoAnswer}
	case err != nil:
		a.log.WithError(err).WithField("course", req.CourseTitle).Warn("tutor request failed")
		return Reply{Text: MsgConnectionProblem, Failed: true}
	case strings.TrimSpace(text) == "":
		return Reply{Text: MsgNoAnswer}
	}
	return Reply{Text: text}
}
