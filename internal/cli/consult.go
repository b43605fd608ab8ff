package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"academy/internal/app"
	"academy/internal/cli/colours"
)

const (
	msgAgreePrivacy = "개인정보처리방침에 동의해 주세요."
	msgConsulted    = "상담 신청이 완료되었습니다!"
)

func (r *runner) consultCmd() *cobra.Command {
	var req app.ConsultRequest
	cmd := &cobra.Command{
		Use:   "consult",
		Short: "📞 Request a call back about a course",
		Long: `
Leaves your name and phone number so the academy can call you about a
course. The privacy policy ("academy legal privacy") must be accepted
with --agree-privacy.
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			env, err := r.session(cmd)
			if err != nil {
				return err
			}
			if _, err := env.Ctrl.RequestConsultation(cmd.Context(), req); err != nil {
				if errors.Is(err, app.ErrPrivacyNotAgreed) {
					return errors.New(msgAgreePrivacy)
				}
				return err
			}
			success(cmd, msgConsulted)
			colours.Muted.Fprintln(cmd.OutOrStdout(), "빠른 시일 내에 기재해주신 번호로 연락드리겠습니다.")
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&req.Name, "name", "", "your name")
	f.StringVar(&req.Phone, "phone", "", "phone number, e.g. 010-0000-0000")
	f.StringVar(&req.Course, "course", "", "course id or title, or \""+app.OtherInquiry+"\"")
	f.BoolVar(&req.Agreed, "agree-privacy", false, "accept the privacy policy")
	return cmd
}
