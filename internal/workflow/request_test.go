package workflow_test

import (
	"time"

	apperrors "github.com/frahmantamala/hr-backoffice/internal"
	"github.com/frahmantamala/hr-backoffice/internal/workflow"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/shopspring/decimal"
)

var _ = Describe("Kind", func() {
	It("parses the four kinds case-insensitively", func() {
		for _, raw := range []string{"leave", "Bank_Change", "salary_advance", " reimbursement "} {
			_, err := workflow.ParseKind(raw)
			Expect(err).NotTo(HaveOccurred())
		}
	})

	It("rejects anything else", func() {
		_, err := workflow.ParseKind("overtime")
		Expect(err).To(MatchError(apperrors.ErrInvalidRequestKind))
	})

	It("maps every kind to its table", func() {
		t, err := workflow.TableFor(workflow.KindSalaryAdvance)
		Expect(err).NotTo(HaveOccurred())
		Expect(t).To(Equal(workflow.Table{Name: "salary_advance_requests", IDColumn: "advance_id", DateColumn: "request_date"}))
	})
})

var _ = Describe("ParseTargetStatus", func() {
	It("accepts approved and rejected", func() {
		s, err := workflow.ParseTargetStatus("approved")
		Expect(err).NotTo(HaveOccurred())
		Expect(s).To(Equal(workflow.StatusApproved))

		s, err = workflow.ParseTargetStatus("Rejected")
		Expect(err).NotTo(HaveOccurred())
		Expect(s).To(Equal(workflow.StatusRejected))
	})

	It("refuses to move a request back to pending", func() {
		_, err := workflow.ParseTargetStatus("Pending")
		Expect(err).To(MatchError(apperrors.ErrInvalidTargetStatus))
	})
})

var _ = Describe("Sort", func() {
	It("orders by submission then kind then id", func() {
		t0 := time.Date(2025, time.March, 1, 9, 0, 0, 0, time.UTC)
		t1 := t0.Add(time.Hour)
		requests := []workflow.Request{
			{Kind: workflow.KindReimbursement, ID: 3, SubmittedAt: t0},
			{Kind: workflow.KindLeave, ID: 3, SubmittedAt: t0},
			{Kind: workflow.KindLeave, ID: 9, SubmittedAt: t0},
			{Kind: workflow.KindBankChange, ID: 1, SubmittedAt: t1},
		}

		workflow.Sort(requests)

		Expect(requests[0].Kind).To(Equal(workflow.KindBankChange))
		Expect(requests[1].Kind).To(Equal(workflow.KindLeave))
		Expect(requests[1].ID).To(Equal(int64(9)))
		Expect(requests[2].Kind).To(Equal(workflow.KindLeave))
		Expect(requests[2].ID).To(Equal(int64(3)))
		Expect(requests[3].Kind).To(Equal(workflow.KindReimbursement))
	})
})

var _ = Describe("SubmitInput", func() {
	start := time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC)

	DescribeTable("validation",
		func(in workflow.SubmitInput, valid bool) {
			err := in.Validate()
			if valid {
				Expect(err).NotTo(HaveOccurred())
				return
			}
			Expect(apperrors.IsType(err, apperrors.ErrorTypeValidation)).To(BeTrue())
		},
		Entry("leave with ordered dates", workflow.SubmitInput{Kind: workflow.KindLeave, EmployeeID: 7, Start: start, End: start.AddDate(0, 0, 2)}, true),
		Entry("single day leave", workflow.SubmitInput{Kind: workflow.KindLeave, EmployeeID: 7, Start: start, End: start}, true),
		Entry("leave ending before it starts", workflow.SubmitInput{Kind: workflow.KindLeave, EmployeeID: 7, Start: start, End: start.AddDate(0, 0, -1)}, false),
		Entry("bank change to a new account", workflow.SubmitInput{Kind: workflow.KindBankChange, EmployeeID: 7, OldAccount: "111", NewAccount: "222"}, true),
		Entry("bank change to the same account", workflow.SubmitInput{Kind: workflow.KindBankChange, EmployeeID: 7, OldAccount: "111", NewAccount: "111"}, false),
		Entry("bank change without a new account", workflow.SubmitInput{Kind: workflow.KindBankChange, EmployeeID: 7}, false),
		Entry("positive advance", workflow.SubmitInput{Kind: workflow.KindSalaryAdvance, EmployeeID: 7, Amount: decimal.NewFromInt(500)}, true),
		Entry("zero reimbursement", workflow.SubmitInput{Kind: workflow.KindReimbursement, EmployeeID: 7, Amount: decimal.Zero}, false),
		Entry("missing employee", workflow.SubmitInput{Kind: workflow.KindSalaryAdvance, Amount: decimal.NewFromInt(500)}, false),
		Entry("unknown kind", workflow.SubmitInput{Kind: "overtime", EmployeeID: 7}, false),
	)
})
