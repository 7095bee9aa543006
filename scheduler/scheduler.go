package scheduler

import (
	"fmt"
	"time"

	"github.com/go-openapi/strfmt"
	"github.com/qrng-team/qrng-engine/core"
	"github.com/qrng-team/qrng-engine/generator"
	"github.com/qrng-team/qrng-engine/selector"
	"go.uber.org/zap"
)

type statusHistory map[string][]core.Status

// NormalScheduler dispatches generation requests from a concurrent FIFO
// one at a time. Group-level parallelism lives inside the generator; the
// scheduler keeps request ordering fair.
type NormalScheduler struct {
	queue         *NormalQueue
	conf          *core.Conf
	statusHistory statusHistory
}

type requestInScheduler struct {
	requestData *core.RequestData
}

func (n *NormalScheduler) Setup(conf *core.Conf) error {
	n.queue = &NormalQueue{}
	if err := n.queue.Setup(conf); err != nil {
		return err
	}
	n.conf = conf
	n.statusHistory = make(statusHistory)
	return nil
}

func (n *NormalScheduler) Start() error {
	go func() {
		for {
			zap.L().Debug("checking the queue...")
			ris, err := n.queue.Dequeue(true)
			if err != nil {
				zap.L().Error(fmt.Sprintf("failed to get request from queue. Reason:%s", err))
				continue
			}
			rid := ris.requestData.ID
			zap.L().Debug(fmt.Sprintf("processing request:%s", rid))
			st := core.RUNNING
			n.statusHistory[rid] = append(n.statusHistory[rid], st)
			ris.requestData.Status = st

			generator.Process(ris.requestData, n.conf, n.resolveStrategy())

			n.statusHistory[rid] = append(n.statusHistory[rid], ris.requestData.Status)
			zap.L().Debug(fmt.Sprintf("finished to process request(%s), status:%s",
				rid, ris.requestData.Status))
			n.publish(ris.requestData)
			delete(n.statusHistory, rid)
		}
	}()
	return nil
}

func (n *NormalScheduler) HandleRequest(rd *core.RequestData) {
	zap.L().Debug(fmt.Sprintf("starting to handle request(%s) in %s", rd.ID, rd.Status))
	if err := n.queue.Enqueue(&requestInScheduler{requestData: rd}); err != nil {
		msg := core.SetFailureWithError(rd, err)
		zap.L().Info(msg)
		n.publish(rd)
	}
}

// CancelQueuedRequests drains the queue wholesale. Every waiting request
// is marked cancelled and published; the request currently running, if
// any, is not interrupted.
func (n *NormalScheduler) CancelQueuedRequests() int {
	cancelled := 0
	for {
		ris, err := n.queue.Dequeue(false)
		if err != nil {
			break
		}
		rd := ris.requestData
		rd.Status = core.CANCELLED
		rd.Result.Message = "cancelled before execution"
		rd.Ended = strfmt.DateTime(time.Now())
		zap.L().Info(fmt.Sprintf("cancelled queued request(%s)", rd.ID))
		n.publish(rd)
		cancelled++
	}
	return cancelled
}

func (n *NormalScheduler) GetCurrentQueueSize() int {
	return n.queue.GetLen()
}

func (n *NormalScheduler) resolveStrategy() selector.Strategy {
	var strategy selector.Strategy
	sc := core.GetSystemComponents()
	if sc == nil {
		return &selector.Mode{}
	}
	if err := sc.Invoke(func(s selector.Strategy) { strategy = s }); err != nil {
		zap.L().Debug(fmt.Sprintf("no selection strategy in container, using mode/reason:%s", err))
		return &selector.Mode{}
	}
	return strategy
}

func (n *NormalScheduler) publish(rd *core.RequestData) {
	sc := core.GetSystemComponents()
	if sc == nil {
		zap.L().Error("system components is not initialized, dropping result")
		return
	}
	sc.ResultChan <- rd
}
