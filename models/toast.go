package models

// Toast kinds, matching the stylesheet classes.
const (
	ToastSuccess = "success"
	ToastError   = "error"
	ToastInfo    = "info"
)

// Toast is a transient, auto-dismissing notice shown once.
type Toast struct {
	Kind string `json:"kind"`
	Text string `json:"text"`
}

func SuccessToast(text string) Toast { return Toast{Kind: ToastSuccess, Text: text} }
func ErrorToast(text string) Toast   { return Toast{Kind: ToastError, Text: text} }
func InfoToast(text string) Toast    { return Toast{Kind: ToastInfo, Text: text} }
