package service

// smaState — скользящее среднее по фиксированному окну.
type smaState struct {
	period int
	window []float64
	next   int
	sum    float64
	warmup int
}

func newSMA(period int) smaState {
	if period <= 1 {
		period = 1
	}
	return smaState{
		period: period,
		window: make([]float64, period),
	}
}

func (s *smaState) Update(price float64) {
	s.sum += price - s.window[s.next]
	s.window[s.next] = price
	s.next = (s.next + 1) % s.period
	if s.warmup < s.period {
		s.warmup++
	}
}

func (s *smaState) Ready() bool { return s.warmup >= s.period }

func (s *smaState) Value() float64 {
	if s.warmup == 0 {
		return 0
	}
	return s.sum / float64(s.warmup)
}
