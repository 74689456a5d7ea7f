package view

// NoticeKind classifies a transient message.
type NoticeKind int

const (
	NoticeNone NoticeKind = iota
	NoticeSuccess
	NoticeError
)

func (k NoticeKind) String() string {
	switch k {
	case NoticeSuccess:
		return "success"
	case NoticeError:
		return "error"
	}
	return "none"
}

// Notice is a transient message tied to the action that produced it.
type Notice struct {
	Kind    NoticeKind
	Message string
}

func Success(msg string) Notice { return Notice{Kind: NoticeSuccess, Message: msg} }

func Error(msg string) Notice { return Notice{Kind: NoticeError, Message: msg} }

func (n Notice) IsZero() bool { return n.Kind == NoticeNone }

// RenderNotice styles n for the terminal; the zero notice renders empty.
func RenderNotice(n Notice) string {
	styles := DefaultStyles()
	switch n.Kind {
	case NoticeSuccess:
		return styles.Success.Render("✓ " + n.Message)
	case NoticeError:
		return styles.Error.Render("✗ " + n.Message)
	}
	return ""
}
