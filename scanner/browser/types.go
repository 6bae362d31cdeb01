package browser

import (
	"github.com/pkg/errors"
	"github.com/wirepair/gcd/gcdapi"
)

// TabDisconnectedHandler is called when the tab crashes or the inspector was disconnected
type TabDisconnectedHandler func(tab *Tab, reason string)

// revive:exported
var (
	ErrNavigationTimedOut = errors.New("navigation timed out")
	ErrTabCrashed         = errors.New("tab crashed")
	ErrTabClosing         = errors.New("closing")
	ErrTimedOut           = errors.New("request timed out")
	ErrNavigating         = errors.New("error in navigation")
	ErrBrowserClosing     = errors.New("unable to load, as closing down")
)

// InvalidTabErr when we are unable to access a tab
type InvalidTabErr struct {
	Message string
}

func (e *InvalidTabErr) Error() string {
	return "Unable to access tab: " + e.Message
}

// ScriptEvaluationErr returned when an injected script caused an error
type ScriptEvaluationErr struct {
	Message          string
	ExceptionText    string
	ExceptionDetails *gcdapi.RuntimeExceptionDetails
}

func (e *ScriptEvaluationErr) Error() string {
	return e.Message + " " + e.ExceptionText
}

// NodeType are standard browser node types
type NodeType uint8

// revive:exported
const (
	NodeElement               NodeType = 0x1
	NodeText                  NodeType = 0x3
	NodeProcessingInstruction NodeType = 0x7
	NodeComment               NodeType = 0x8
	NodeDocument              NodeType = 0x9
	NodeDocumentType          NodeType = 0xa
	NodeDocumentFragment      NodeType = 0xb
)

var nodeTypeMap = map[NodeType]string{
	NodeElement:               "ELEMENT_NODE",
	NodeText:                  "TEXT_NODE",
	NodeProcessingInstruction: "PROCESSING_INSTRUCTION_NODE",
	NodeComment:               "COMMENT_NODE",
	NodeDocument:              "DOCUMENT_NODE",
	NodeDocumentType:          "DOCUMENT_TYPE_NODE",
	NodeDocumentFragment:      "DOCUMENT_FRAGMENT_NODE",
}

func (n NodeType) String() string {
	if s, ok := nodeTypeMap[n]; ok {
		return s
	}
	return "UNKNOWN_NODE"
}
