package screens

// Notifier shows short-lived messages to the user.
type Notifier interface {
	Success(msg string)
	Info(msg string)
	Warning(msg string)
	Error(msg string)
}

type nopNotifier struct{}

func (nopNotifier) Success(string) {}
func (nopNotifier) Info(string)    {}
func (nopNotifier) Warning(string) {}
func (nopNotifier) Error(string)   {}
