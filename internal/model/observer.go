package model

// ResultObserver defines the sink for classification lines read back from the link.
type ResultObserver interface {
	OnResult(r Result)
}

// ResultObserverFunc adapts a plain function to ResultObserver.
type ResultObserverFunc func(r Result)

func (f ResultObserverFunc) OnResult(r Result) {
	f(r)
}
