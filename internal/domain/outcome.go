package domain

// OutcomeKind tags the terminal result of a gateway call.
type OutcomeKind string

const (
	OutcomeRedirect OutcomeKind = "redirect"
	OutcomeSuccess  OutcomeKind = "success"
	OutcomeFail     OutcomeKind = "fail"
)

const ReasonPreviousPaymentFailed = "previous_payment_failed"

// Outcome is returned up the call stack instead of redirecting mid-flow. The
// request handler performs the actual browser redirect.
type Outcome struct {
	Kind   OutcomeKind
	URL    string
	Reason string
}

func Redirect(url string) Outcome {
	return Outcome{Kind: OutcomeRedirect, URL: url}
}

func Success() Outcome {
	return Outcome{Kind: OutcomeSuccess}
}

func Fail(reason string) Outcome {
	return Outcome{Kind: OutcomeFail, Reason: reason}
}

// WithURL sets the page the browser lands on for success and fail outcomes.
func (o Outcome) WithURL(url string) Outcome {
	o.URL = url
	return o
}

func (o Outcome) IsRedirect() bool { return o.Kind == OutcomeRedirect }
func (o Outcome) IsSuccess() bool  { return o.Kind == OutcomeSuccess }
func (o Outcome) IsFail() bool     { return o.Kind == OutcomeFail }

// Completion is the verdict of a gateway's complete step.
type Completion int

const (
	// CompletionPending means the gateway does not settle on return; another flow confirms it.
	CompletionPending Completion = iota
	CompletionPaid
	CompletionUnpaid
)

func (c Completion) String() string {
	switch c {
	case CompletionPaid:
		return "paid"
	case CompletionUnpaid:
		return "unpaid"
	default:
		return "pending"
	}
}

// ChargeResult is the two-valued failure split of an off-session charge plus success.
type ChargeResult string

const (
	ChargeOK    ChargeResult = "ok"
	ChargeStop  ChargeResult = "stop"
	ChargeRetry ChargeResult = "retry"
)
