package browser

import (
	"context"
	"encoding/json"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/andybalholm/cascadia"
	"github.com/antchfx/xpath"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/wirepair/gcd"
	"github.com/wirepair/gcd/gcdapi"
	"gitlab.com/browserker/locate/browserk"
	"gitlab.com/browserker/locate/browserk/navi"
)

// markAttribute tags xpath matches so they can be collected by node id
const markAttribute = "data-browserker-locate"

// Tab is a chromium browser tab we search in
type Tab struct {
	g                     *gcd.Gcd
	t                     *gcd.ChromeTarget
	id                    int64
	searches              int64
	topNodeID             atomic.Value           // the nodeID of the current top level #document
	navigationCh          chan int               // for receiving navigation complete messages
	crashedCh             chan string            // the chrome tab crashed with a reason
	exitCh                chan struct{}          // for when we close the tab, kill go routines
	shutdown              int32                  // have we already shut down
	disconnectedHandler   TabDisconnectedHandler // called with reason the chrome tab was disconnected from the debugger service
	navigationTimeout     time.Duration          // amount of time to wait before failing navigation
	stabilityTimeout      time.Duration          // amount of time to give up waiting for stability
	stableAfter           time.Duration          // amount of time of no activity to consider the DOM stable
	lastNodeChangeTimeVal atomic.Value           // timestamp of when the last node change occurred
}

// NewTab opens a new target in the browser
func NewTab(ctx context.Context, gcdBrowser *gcd.Gcd) (*Tab, error) {
	target, err := gcdBrowser.NewTab()
	if err != nil {
		return nil, &InvalidTabErr{Message: err.Error()}
	}

	t := &Tab{
		g:                 gcdBrowser,
		t:                 target,
		id:                browserk.GetBrowserID(),
		navigationCh:      make(chan int, 1), // for signaling navigation complete
		crashedCh:         make(chan string), // reason the tab crashed/was disconnected.
		exitCh:            make(chan struct{}),
		navigationTimeout: 30 * time.Second,       // default 30 seconds for timeout
		stabilityTimeout:  2 * time.Second,        // default 2 seconds before we give up waiting for stability
		stableAfter:       300 * time.Millisecond, // default 300 ms for considering the DOM stable
	}
	t.setTopNodeID(-1)
	t.disconnectedHandler = t.defaultDisconnectedHandler
	t.subscribeBrowserEvents(ctx)
	return t, nil
}

// ID of this tab
func (t *Tab) ID() int64 {
	return t.id
}

// SetDisconnectedHandler so caller can trap when the debugger was disconnected/crashed.
func (t *Tab) SetDisconnectedHandler(handlerFn TabDisconnectedHandler) {
	t.disconnectedHandler = handlerFn
}

func (t *Tab) defaultDisconnectedHandler(tab *Tab, reason string) {
	log.Debug().Msgf("tab %s tabID: %s", reason, tab.t.Target.Id)
}

// SetNavigationTimeout to wait for the load event before giving up, default is 30 seconds
func (t *Tab) SetNavigationTimeout(timeout time.Duration) {
	t.navigationTimeout = timeout
}

// SetStabilityTimeout to wait for the DOM to settle after load, default is 2 seconds.
func (t *Tab) SetStabilityTimeout(timeout time.Duration) {
	t.stabilityTimeout = timeout
}

// SetStabilityTime to wait for no node changes before we consider the DOM stable.
// The default stableAfter is 300 ms.
func (t *Tab) SetStabilityTime(stableAfter time.Duration) {
	t.stableAfter = stableAfter
}

// Close the tab and its target
func (t *Tab) Close() {
	if !atomic.CompareAndSwapInt32(&t.shutdown, 0, 1) {
		return
	}
	close(t.exitCh)
	if err := t.g.CloseTab(t.t); err != nil {
		log.Warn().Err(err).Int64("tab", t.id).Msg("failed to close tab")
	}
}

func (t *Tab) isShutdown() bool {
	return atomic.LoadInt32(&t.shutdown) == 1
}

// Navigate to url and wait for it to load, then refresh the top document
func (t *Tab) Navigate(ctx context.Context, url string) error {
	if t.isShutdown() {
		return ErrTabClosing
	}

	// drop a load event left over from about:blank
	select {
	case <-t.navigationCh:
	default:
	}

	navParams := &gcdapi.PageNavigateParams{Url: url, TransitionType: "typed"}
	_, _, errText, err := t.t.Page.NavigateWithParams(navParams)
	if err != nil {
		return err
	}

	if errText != "" {
		return errors.Wrap(ErrNavigating, errText)
	}

	if err := t.WaitReady(ctx); err != nil {
		return err
	}
	log.Ctx(ctx).Debug().Str("url", url).Int64("tab", t.id).Msg("navigation complete")
	return t.getDocument()
}

// WaitReady waits for the page to load and the DOM to be stable. A DOM that
// never settles is searched anyway once the stability timeout passes.
func (t *Tab) WaitReady(ctx context.Context) error {
	navTimer := time.NewTimer(t.navigationTimeout)
	defer navTimer.Stop()

	select {
	case <-navTimer.C:
		return ErrNavigationTimedOut
	case <-ctx.Done():
		return ctx.Err()
	case <-t.exitCh:
		return ErrTabClosing
	case reason := <-t.crashedCh:
		return errors.Wrap(ErrTabCrashed, reason)
	case <-t.navigationCh:
	}
	t.lastNodeChangeTimeVal.Store(time.Now())

	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()
	stableTimer := time.NewTimer(t.stabilityTimeout)
	defer stableTimer.Stop()

	for {
		select {
		case reason := <-t.crashedCh:
			return errors.Wrap(ErrTabCrashed, reason)
		case <-ctx.Done():
			return ctx.Err()
		case <-t.exitCh:
			return ErrTabClosing
		case <-stableTimer.C:
			log.Ctx(ctx).Debug().Int64("tab", t.id).Msg("stability timed out")
			return nil
		case <-ticker.C:
			if changeTime, ok := t.lastNodeChangeTimeVal.Load().(time.Time); ok {
				if time.Since(changeTime) >= t.stableAfter {
					return nil
				}
			}
		}
	}
}

// GetURL by looking at the navigation history
func (t *Tab) GetURL() string {
	_, entries, err := t.t.Page.GetNavigationHistory()
	if err != nil || len(entries) == 0 {
		return ""
	}
	return entries[len(entries)-1].Url
}

// getDocument must be called after each load, node ids from an older
// document are invalid.
func (t *Tab) getDocument() error {
	doc, err := t.t.DOM.GetDocument(-1, false)
	if err != nil {
		return errors.Wrap(err, "getting document")
	}
	t.setTopNodeID(doc.NodeId)
	return nil
}

func (t *Tab) setTopNodeID(nodeID int) {
	t.topNodeID.Store(nodeID)
}

// GetTopNodeID returns the current top node ID of this Tab.
func (t *Tab) GetTopNodeID() int {
	if topNodeID, ok := t.topNodeID.Load().(int); ok {
		return topNodeID
	}
	return -1
}

// FindElements searches the top level document
func (t *Tab) FindElements(ctx context.Context, s *navi.Selector) ([]navi.Element, error) {
	top := t.GetTopNodeID()
	if top == -1 {
		return nil, &InvalidTabErr{Message: "no document loaded"}
	}
	return t.find(ctx, top, false, s)
}

// find runs the selector with scopeID as the search root. Only descendants
// of scopeID are returned when scoped is set.
func (t *Tab) find(ctx context.Context, scopeID int, scoped bool, s *navi.Selector) ([]navi.Element, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if t.isShutdown() {
		return nil, ErrTabClosing
	}

	q, err := s.Compile()
	if err != nil {
		return nil, err
	}

	var nodeIDs []int
	switch q.Lang {
	case navi.QueryCSS:
		nodeIDs, err = t.t.DOM.QuerySelectorAll(scopeID, q.Expr)
		if err != nil {
			if _, compileErr := cascadia.Compile(q.Expr); compileErr != nil {
				return nil, &navi.InvalidSelectorErr{Selector: s.String(), Message: compileErr.Error()}
			}
			return nil, errors.Wrap(err, "querying selector")
		}
	case navi.QueryXPath:
		nodeIDs, err = t.evaluateXPath(ctx, s, q.Expr)
		if err != nil {
			return nil, err
		}
		if scoped {
			if nodeIDs, err = t.descendantsOnly(scopeID, nodeIDs); err != nil {
				return nil, err
			}
		}
	}

	elements := make([]navi.Element, 0, len(nodeIDs))
	for _, nodeID := range nodeIDs {
		node, err := t.t.DOM.DescribeNodeWithParams(&gcdapi.DOMDescribeNodeParams{NodeId: nodeID})
		if err != nil {
			return nil, errors.Wrapf(err, "describing node %d", nodeID)
		}
		node.Attributes = NodeRemoveAttribute(node, markAttribute)
		elements = append(elements, newElement(t, nodeID, node))
	}
	return elements, nil
}

// evaluateXPath runs expr with document.evaluate, tags each match with a
// one off marker and collects them by querying for it. Matches come back in
// document order.
func (t *Tab) evaluateXPath(ctx context.Context, s *navi.Selector, expr string) ([]int, error) {
	if _, err := xpath.Compile(expr); err != nil {
		return nil, &navi.InvalidSelectorErr{Selector: s.String(), Message: err.Error()}
	}

	token := strconv.FormatInt(t.id, 10) + "-" + strconv.FormatInt(atomic.AddInt64(&t.searches, 1), 10)
	exprJSON, _ := json.Marshal(expr)
	tokenJSON, _ := json.Marshal(token)

	script := `(function() {
	var r = document.evaluate(` + string(exprJSON) + `, document, null, XPathResult.ORDERED_NODE_SNAPSHOT_TYPE, null);
	for (var i = 0; i < r.snapshotLength; i++) {
		if (r.snapshotItem(i).nodeType !== 1) { return -1; }
	}
	for (var i = 0; i < r.snapshotLength; i++) {
		r.snapshotItem(i).setAttribute("` + markAttribute + `", ` + string(tokenJSON) + `);
	}
	return r.snapshotLength;
})()`

	result, err := t.EvaluateScript(script)
	if err != nil {
		var scriptErr *ScriptEvaluationErr
		if errors.As(err, &scriptErr) {
			return nil, &navi.InvalidSelectorErr{Selector: s.String(), Message: scriptErr.ExceptionText}
		}
		return nil, err
	}

	count, _ := result.Value.(float64)
	if count < 0 {
		return nil, &navi.InvalidSelectorErr{Selector: s.String(), Message: "result is not an element"}
	}
	if count == 0 {
		return []int{}, nil
	}
	defer t.clearMarks(ctx, token)

	tokenSelector, _ := json.Marshal(token)
	return t.t.DOM.QuerySelectorAll(t.GetTopNodeID(), "["+markAttribute+"="+string(tokenSelector)+"]")
}

func (t *Tab) clearMarks(ctx context.Context, token string) {
	tokenJSON, _ := json.Marshal(token)
	script := `document.querySelectorAll('[` + markAttribute + `=` + string(tokenJSON) + `]').forEach(function(e) { e.removeAttribute("` + markAttribute + `"); })`
	if _, err := t.EvaluateScript(script); err != nil {
		log.Ctx(ctx).Warn().Err(err).Msg("failed to clear xpath markers")
	}
}

func (t *Tab) descendantsOnly(scopeID int, nodeIDs []int) ([]int, error) {
	descendants, err := t.t.DOM.QuerySelectorAll(scopeID, "*")
	if err != nil {
		return nil, errors.Wrap(err, "listing descendants")
	}
	inScope := make(map[int]struct{}, len(descendants))
	for _, id := range descendants {
		inScope[id] = struct{}{}
	}

	filtered := make([]int, 0, len(nodeIDs))
	for _, id := range nodeIDs {
		if _, ok := inScope[id]; ok {
			filtered = append(filtered, id)
		}
	}
	return filtered, nil
}

// EvaluateScript in the global context.
func (t *Tab) EvaluateScript(scriptSource string) (*gcdapi.RuntimeRemoteObject, error) {
	params := &gcdapi.RuntimeEvaluateParams{
		Expression:            scriptSource,
		ObjectGroup:           "browserker",
		IncludeCommandLineAPI: false,
		Silent:                true,
		ReturnByValue:         true,
		GeneratePreview:       false,
		UserGesture:           false,
		AwaitPromise:          false,
		ThrowOnSideEffect:     false,
		Timeout:               1000,
	}
	rro, exp, err := t.t.Runtime.EvaluateWithParams(params)
	if err != nil {
		return nil, err
	}

	if exp != nil {
		return nil, &ScriptEvaluationErr{Message: "error executing script", ExceptionText: exp.Text, ExceptionDetails: exp}
	}
	return rro, nil
}

// GetOuterHTML of a node
func (t *Tab) GetOuterHTML(nodeID int) (string, error) {
	return t.t.DOM.GetOuterHTMLWithParams(&gcdapi.DOMGetOuterHTMLParams{NodeId: nodeID})
}

func (t *Tab) domUpdated(target *gcd.ChromeTarget, payload []byte) {
	t.lastNodeChangeTimeVal.Store(time.Now())
}

func (t *Tab) subscribeBrowserEvents(ctx context.Context) {
	t.t.DOM.Enable()
	t.t.Inspector.Enable()
	t.t.Page.Enable()

	t.t.Subscribe("Inspector.targetCrashed", func(target *gcd.ChromeTarget, payload []byte) {
		log.Ctx(ctx).Warn().Msgf("tab crashed: %s", string(payload))
		t.disconnectedHandler(t, "crashed")
		select {
		case t.crashedCh <- "crashed":
		case <-t.exitCh:
		}
	})

	t.t.Subscribe("Inspector.detached", func(target *gcd.ChromeTarget, payload []byte) {
		header := &gcdapi.InspectorDetachedEvent{}
		err := json.Unmarshal(payload, header)
		reason := "detached"

		if err == nil {
			reason = header.Params.Reason
		}
		t.disconnectedHandler(t, reason)

		select {
		case t.crashedCh <- reason:
		case <-t.exitCh:
		}
	})

	t.t.Subscribe("Page.loadEventFired", func(target *gcd.ChromeTarget, payload []byte) {
		select {
		case t.navigationCh <- 0:
		default:
		}
	})

	t.t.Subscribe("DOM.setChildNodes", t.domUpdated)
	t.t.Subscribe("DOM.attributeModified", t.domUpdated)
	t.t.Subscribe("DOM.attributeRemoved", t.domUpdated)
	t.t.Subscribe("DOM.characterDataModified", t.domUpdated)
	t.t.Subscribe("DOM.childNodeCountUpdated", t.domUpdated)
	t.t.Subscribe("DOM.childNodeInserted", t.domUpdated)
	t.t.Subscribe("DOM.childNodeRemoved", t.domUpdated)
	t.t.Subscribe("DOM.documentUpdated", t.domUpdated)
}
