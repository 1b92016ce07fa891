// Copyright 2025 Agentwork, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package pagehound

import (
	"fmt"
	"time"

	"github.com/chromedp/chromedp"
)

// ActionType names one kind of interactive page action.
type ActionType string

const (
	ActionClick           ActionType = "click"
	ActionFill            ActionType = "fill"
	ActionWait            ActionType = "wait"
	ActionScroll          ActionType = "scroll"
	ActionScreenshot      ActionType = "screenshot"
	ActionWaitForSelector ActionType = "waitForSelector"
	ActionSubmit          ActionType = "submit"
)

// Action is one step of an interactive browser sequence. Steps execute
// strictly in list order; the first failing step aborts the whole
// sequence.
type Action struct {
	Type     ActionType `json:"type"`
	Selector string     `json:"selector,omitempty"`
	Value    string     `json:"value,omitempty"`
	Ms       int        `json:"ms,omitempty"`
	Pixels   int        `json:"pixels,omitempty"`
}

// Per-action timeout budget. The wait actions get their requested duration
// plus slack; everything else gets a fixed ceiling.
const (
	clickActionTimeout    = 5 * time.Second
	selectorActionTimeout = 10 * time.Second
	waitActionSlack       = 2 * time.Second
)

// compiledAction pairs the chromedp tasks for one action with the timeout
// that bounds them.
type compiledAction struct {
	tasks   chromedp.Tasks
	timeout time.Duration
}

// compileAction translates one Action into chromedp tasks. screenshot
// output lands in shot. Unknown or underspecified actions are rejected
// before anything touches the browser.
func compileAction(a Action, shot *[]byte) (compiledAction, error) {
	needSelector := func() error {
		if a.Selector == "" {
			return fmt.Errorf("%s action requires a selector", a.Type)
		}
		return nil
	}

	switch a.Type {
	case ActionClick:
		if err := needSelector(); err != nil {
			return compiledAction{}, err
		}
		return compiledAction{
			tasks:   chromedp.Tasks{chromedp.Click(a.Selector, chromedp.ByQuery), chromedp.Sleep(500 * time.Millisecond)},
			timeout: clickActionTimeout,
		}, nil

	case ActionFill:
		if err := needSelector(); err != nil {
			return compiledAction{}, err
		}
		return compiledAction{
			tasks:   chromedp.Tasks{chromedp.SetValue(a.Selector, a.Value, chromedp.ByQuery), chromedp.Sleep(300 * time.Millisecond)},
			timeout: clickActionTimeout,
		}, nil

	case ActionWait:
		ms := a.Ms
		if ms <= 0 {
			ms = 1000
		}
		d := time.Duration(ms) * time.Millisecond
		return compiledAction{
			tasks:   chromedp.Tasks{chromedp.Sleep(d)},
			timeout: d + waitActionSlack,
		}, nil

	case ActionScroll:
		pixels := a.Pixels
		if pixels == 0 {
			pixels = 500
		}
		return compiledAction{
			tasks: chromedp.Tasks{
				chromedp.Evaluate(fmt.Sprintf("window.scrollBy(0, %d)", pixels), nil),
				chromedp.Sleep(500 * time.Millisecond),
			},
			timeout: clickActionTimeout,
		}, nil

	case ActionScreenshot:
		return compiledAction{
			tasks:   chromedp.Tasks{chromedp.CaptureScreenshot(shot)},
			timeout: selectorActionTimeout,
		}, nil

	case ActionWaitForSelector:
		if err := needSelector(); err != nil {
			return compiledAction{}, err
		}
		return compiledAction{
			tasks:   chromedp.Tasks{chromedp.WaitReady(a.Selector, chromedp.ByQuery)},
			timeout: selectorActionTimeout,
		}, nil

	case ActionSubmit:
		if err := needSelector(); err != nil {
			return compiledAction{}, err
		}
		return compiledAction{
			tasks:   chromedp.Tasks{chromedp.Submit(a.Selector, chromedp.ByQuery), chromedp.Sleep(time.Second)},
			timeout: clickActionTimeout,
		}, nil

	default:
		return compiledAction{}, fmt.Errorf("unknown action type %q", a.Type)
	}
}
