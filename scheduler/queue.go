package scheduler

import (
	"fmt"

	conq "github.com/enriquebris/goconcurrentqueue"
	"github.com/qrng-team/qrng-engine/core"
	"go.uber.org/zap"
)

type fifo interface {
	Enqueue(*requestInScheduler) error
	Dequeue() (*requestInScheduler, error)
	DequeueOrWaitForNextElement() (*requestInScheduler, error)
	GetLen() int
}

type conqFIFO struct {
	conq.FIFO
}

func newConqFIFO() *conqFIFO {
	return &conqFIFO{
		FIFO: *conq.NewFIFO(),
	}
}

func (c *conqFIFO) Enqueue(ris *requestInScheduler) error {
	return c.FIFO.Enqueue(ris)
}

func (c *conqFIFO) Dequeue() (*requestInScheduler, error) {
	tmp, err := c.FIFO.Dequeue()
	if err != nil {
		return nil, err
	}
	return tmp.(*requestInScheduler), nil
}

func (c *conqFIFO) DequeueOrWaitForNextElement() (*requestInScheduler, error) {
	tmp, err := c.FIFO.DequeueOrWaitForNextElement()
	if err != nil {
		return nil, err
	}
	return tmp.(*requestInScheduler), nil
}

func (c *conqFIFO) GetLen() int {
	return c.FIFO.GetLen()
}

type NormalQueue struct {
	fifo    fifo
	maxSize int
}

func (n *NormalQueue) Setup(conf *core.Conf) error {
	n.maxSize = conf.QueueMaxSize
	if n.maxSize <= 0 {
		n.maxSize = 100
	}
	n.fifo = newConqFIFO()
	return nil
}

func (n *NormalQueue) Enqueue(ris *requestInScheduler) error {
	if n.fifo.GetLen() >= n.maxSize {
		return fmt.Errorf("queue is full(%d)", n.maxSize)
	}
	if err := n.fifo.Enqueue(ris); err != nil {
		zap.L().Error(fmt.Sprintf("failed to enqueue request(%s). Reason:%s",
			ris.requestData.ID, err.Error()))
		return err
	}
	return nil
}

func (n *NormalQueue) Dequeue(wait bool) (*requestInScheduler, error) {
	if wait {
		return n.fifo.DequeueOrWaitForNextElement()
	}
	return n.fifo.Dequeue()
}

func (n *NormalQueue) GetLen() int {
	return n.fifo.GetLen()
}
