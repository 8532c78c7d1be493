package nes

// SampleRate is the rate APU samples are produced at.
const SampleRate = 44100

const (
	frameCounterRate = float64(CPUFrequency) / 240.0
	sampleCycles     = float64(CPUFrequency) / SampleRate
)

var lengthTable = [32]byte{
	10, 254, 20, 2, 40, 4, 80, 6, 160, 8, 60, 10, 14, 12, 26, 14,
	12, 16, 24, 18, 48, 20, 96, 22, 192, 24, 72, 26, 16, 28, 32, 30,
}

var dutyTable = [4][8]byte{
	{0, 1, 0, 0, 0, 0, 0, 0},
	{0, 1, 1, 0, 0, 0, 0, 0},
	{0, 1, 1, 1, 1, 0, 0, 0},
	{1, 0, 0, 1, 1, 1, 1, 1},
}

var triangleTable = [32]byte{
	15, 14, 13, 12, 11, 10, 9, 8, 7, 6, 5, 4, 3, 2, 1, 0,
	0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15,
}

var noiseTable = [16]uint16{
	4, 8, 16, 32, 64, 96, 128, 160, 202, 254, 380, 508, 762, 1016, 2034, 4068,
}

// APU emulates the register interface of the 2A03 sound hardware with two pulse
// channels, the triangle and the noise channel. DMC is not emulated and stays silent.
// Reference: https://www.nesdev.org/wiki/APU
type APU struct {
	pulse1   pulse
	pulse2   pulse
	triangle triangle
	noise    noise

	cycle       uint64
	framePeriod byte
	frameValue  byte
	irqInhibit  bool
	frameIRQ    bool

	out    chan float32
	record func(float32)
}

func NewAPU() *APU {
	a := &APU{framePeriod: 4}
	a.pulse1.channel = 1
	a.pulse2.channel = 2
	a.noise.shiftRegister = 1
	return a
}

// SetAudioOut sets the channel samples are sent to, left and right in turn.
// Samples are dropped while the channel is full.
func (a *APU) SetAudioOut(c chan float32) {
	a.out = c
}

// SetRecorder sets a function receiving every mono sample.
func (a *APU) SetRecorder(f func(float32)) {
	a.record = f
}

// Step advances the APU by one CPU cycle.
func (a *APU) Step() {
	c1 := a.cycle
	a.cycle++
	c2 := a.cycle

	a.triangle.stepTimer()
	if c1%2 == 0 {
		a.pulse1.stepTimer()
		a.pulse2.stepTimer()
		a.noise.stepTimer()
	}
	if int(float64(c1)/frameCounterRate) != int(float64(c2)/frameCounterRate) {
		a.stepFrameCounter()
	}
	if int(float64(c1)/sampleCycles) != int(float64(c2)/sampleCycles) {
		a.sendSample()
	}
}

// output mixes the channels with the linear approximation of the NES mixer.
// Reference: https://www.nesdev.org/wiki/APU_Mixer#Linear_Approximation
func (a *APU) output() float32 {
	p := 0.00752 * float32(a.pulse1.output()+a.pulse2.output())
	tnd := 0.00851*float32(a.triangle.output()) + 0.00494*float32(a.noise.output())
	return p + tnd
}

func (a *APU) sendSample() {
	x := a.output()
	if a.record != nil {
		a.record(x)
	}
	if a.out == nil {
		return
	}
	select {
	case a.out <- x: // l
	default:
	}
	select {
	case a.out <- x: // r
	default:
	}
}

// stepFrameCounter runs the frame sequencer, 4 step mode can raise the frame IRQ.
// Reference: https://www.nesdev.org/wiki/APU_Frame_Counter
func (a *APU) stepFrameCounter() {
	switch a.framePeriod {
	case 4:
		a.frameValue = (a.frameValue + 1) % 4
		switch a.frameValue {
		case 0, 2:
			a.stepEnvelope()
		case 1:
			a.stepEnvelope()
			a.stepSweep()
			a.stepLength()
		case 3:
			a.stepEnvelope()
			a.stepSweep()
			a.stepLength()
			if !a.irqInhibit {
				a.frameIRQ = true
			}
		}
	case 5:
		a.frameValue = (a.frameValue + 1) % 5
		switch a.frameValue {
		case 0, 2:
			a.stepEnvelope()
		case 1, 3:
			a.stepEnvelope()
			a.stepSweep()
			a.stepLength()
		}
	}
}

func (a *APU) stepEnvelope() {
	a.pulse1.stepEnvelope()
	a.pulse2.stepEnvelope()
	a.triangle.stepCounter()
	a.noise.stepEnvelope()
}

func (a *APU) stepSweep() {
	a.pulse1.stepSweep()
	a.pulse2.stepSweep()
}

func (a *APU) stepLength() {
	a.pulse1.stepLength()
	a.pulse2.stepLength()
	a.triangle.stepLength()
	a.noise.stepLength()
}

func (a *APU) irq() bool {
	return a.frameIRQ
}

// readStatus reads $4015, reading acknowledges the frame IRQ.
func (a *APU) readStatus() byte {
	var data byte
	if a.pulse1.lengthValue > 0 {
		data |= 0x01
	}
	if a.pulse2.lengthValue > 0 {
		data |= 0x02
	}
	if a.triangle.lengthValue > 0 {
		data |= 0x04
	}
	if a.noise.lengthValue > 0 {
		data |= 0x08
	}
	if a.frameIRQ {
		data |= 0x40
	}
	a.frameIRQ = false
	return data
}

// writeRegister writes $4000-$4013, $4015 and $4017.
func (a *APU) writeRegister(address uint16, data byte) {
	switch address {
	case 0x4000:
		a.pulse1.writeControl(data)
	case 0x4001:
		a.pulse1.writeSweep(data)
	case 0x4002:
		a.pulse1.writeTimerLow(data)
	case 0x4003:
		a.pulse1.writeTimerHigh(data)
	case 0x4004:
		a.pulse2.writeControl(data)
	case 0x4005:
		a.pulse2.writeSweep(data)
	case 0x4006:
		a.pulse2.writeTimerLow(data)
	case 0x4007:
		a.pulse2.writeTimerHigh(data)
	case 0x4008:
		a.triangle.writeControl(data)
	case 0x400A:
		a.triangle.writeTimerLow(data)
	case 0x400B:
		a.triangle.writeTimerHigh(data)
	case 0x400C:
		a.noise.writeControl(data)
	case 0x400E:
		a.noise.writePeriod(data)
	case 0x400F:
		a.noise.writeLength(data)
	case 0x4015:
		a.writeControl(data)
	case 0x4017:
		a.writeFrameCounter(data)
	}
}

func (a *APU) writeControl(data byte) {
	a.pulse1.setEnabled(data&0x01 != 0)
	a.pulse2.setEnabled(data&0x02 != 0)
	a.triangle.enabled = data&0x04 != 0
	if !a.triangle.enabled {
		a.triangle.lengthValue = 0
	}
	a.noise.enabled = data&0x08 != 0
	if !a.noise.enabled {
		a.noise.lengthValue = 0
	}
}

func (a *APU) writeFrameCounter(data byte) {
	a.framePeriod = 4 + (data>>7)&1
	a.irqInhibit = data&0x40 != 0
	if a.irqInhibit {
		a.frameIRQ = false
	}
	if a.framePeriod == 5 {
		a.stepEnvelope()
		a.stepSweep()
		a.stepLength()
	}
}

// envelope is shared by the pulse and noise channels.
type envelope struct {
	enabled  bool
	loop     bool
	start    bool
	period   byte
	value    byte
	volume   byte
	constant byte
}

func (e *envelope) writeControl(data byte) {
	e.loop = data&0x20 != 0
	e.enabled = data&0x10 == 0
	e.period = data & 0x0F
	e.constant = data & 0x0F
	e.start = true
}

func (e *envelope) step() {
	switch {
	case e.start:
		e.volume = 15
		e.value = e.period
		e.start = false
	case e.value > 0:
		e.value--
	default:
		if e.volume > 0 {
			e.volume--
		} else if e.loop {
			e.volume = 15
		}
		e.value = e.period
	}
}

func (e *envelope) output() byte {
	if e.enabled {
		return e.volume
	}
	return e.constant
}

// Pulse
type pulse struct {
	envelope
	channel       byte
	enabled       bool
	dutyMode      byte
	dutyValue     byte
	lengthEnabled bool
	lengthValue   byte
	timerPeriod   uint16
	timerValue    uint16
	sweepEnabled  bool
	sweepReload   bool
	sweepNegate   bool
	sweepShift    byte
	sweepPeriod   byte
	sweepValue    byte
}

func (p *pulse) setEnabled(enabled bool) {
	p.enabled = enabled
	if !enabled {
		p.lengthValue = 0
	}
}

func (p *pulse) writeControl(data byte) {
	p.dutyMode = (data >> 6) & 3
	p.lengthEnabled = data&0x20 == 0
	p.envelope.writeControl(data)
}

func (p *pulse) writeSweep(data byte) {
	p.sweepEnabled = data&0x80 != 0
	p.sweepPeriod = (data>>4)&7 + 1
	p.sweepNegate = data&0x08 != 0
	p.sweepShift = data & 7
	p.sweepReload = true
}

func (p *pulse) writeTimerLow(data byte) {
	p.timerPeriod = (p.timerPeriod & 0xFF00) | uint16(data)
}

func (p *pulse) writeTimerHigh(data byte) {
	if p.enabled {
		p.lengthValue = lengthTable[data>>3]
	}
	p.timerPeriod = (p.timerPeriod & 0x00FF) | uint16(data&7)<<8
	p.envelope.start = true
	p.dutyValue = 0
}

func (p *pulse) stepTimer() {
	if p.timerValue == 0 {
		p.timerValue = p.timerPeriod
		p.dutyValue = (p.dutyValue + 1) % 8
	} else {
		p.timerValue--
	}
}

func (p *pulse) stepEnvelope() {
	p.envelope.step()
}

func (p *pulse) sweep() {
	delta := p.timerPeriod >> p.sweepShift
	if p.sweepNegate {
		p.timerPeriod -= delta
		// Pulse 1 negates with one's complement.
		if p.channel == 1 {
			p.timerPeriod--
		}
	} else {
		p.timerPeriod += delta
	}
}

func (p *pulse) stepSweep() {
	switch {
	case p.sweepReload:
		if p.sweepEnabled && p.sweepValue == 0 {
			p.sweep()
		}
		p.sweepValue = p.sweepPeriod
		p.sweepReload = false
	case p.sweepValue > 0:
		p.sweepValue--
	default:
		if p.sweepEnabled {
			p.sweep()
		}
		p.sweepValue = p.sweepPeriod
	}
}

func (p *pulse) stepLength() {
	if p.lengthEnabled && p.lengthValue > 0 {
		p.lengthValue--
	}
}

func (p *pulse) output() byte {
	if !p.enabled || p.lengthValue == 0 || dutyTable[p.dutyMode][p.dutyValue] == 0 {
		return 0
	}
	if p.timerPeriod < 8 || p.timerPeriod > 0x7FF {
		return 0
	}
	return p.envelope.output()
}

// Triangle
type triangle struct {
	enabled       bool
	lengthEnabled bool
	lengthValue   byte
	timerPeriod   uint16
	timerValue    uint16
	dutyValue     byte
	counterPeriod byte
	counterValue  byte
	counterReload bool
}

func (t *triangle) writeControl(data byte) {
	t.lengthEnabled = data&0x80 == 0
	t.counterPeriod = data & 0x7F
}

func (t *triangle) writeTimerLow(data byte) {
	t.timerPeriod = (t.timerPeriod & 0xFF00) | uint16(data)
}

func (t *triangle) writeTimerHigh(data byte) {
	if t.enabled {
		t.lengthValue = lengthTable[data>>3]
	}
	t.timerPeriod = (t.timerPeriod & 0x00FF) | uint16(data&7)<<8
	t.counterReload = true
}

func (t *triangle) stepTimer() {
	if t.timerValue == 0 {
		t.timerValue = t.timerPeriod
		if t.lengthValue > 0 && t.counterValue > 0 {
			t.dutyValue = (t.dutyValue + 1) % 32
		}
	} else {
		t.timerValue--
	}
}

func (t *triangle) stepLength() {
	if t.lengthEnabled && t.lengthValue > 0 {
		t.lengthValue--
	}
}

func (t *triangle) stepCounter() {
	if t.counterReload {
		t.counterValue = t.counterPeriod
	} else if t.counterValue > 0 {
		t.counterValue--
	}
	if t.lengthEnabled {
		t.counterReload = false
	}
}

func (t *triangle) output() byte {
	if !t.enabled || t.lengthValue == 0 || t.counterValue == 0 {
		return 0
	}
	return triangleTable[t.dutyValue]
}

// Noise
type noise struct {
	envelope
	enabled       bool
	mode          bool
	shiftRegister uint16
	lengthEnabled bool
	lengthValue   byte
	timerPeriod   uint16
	timerValue    uint16
}

func (n *noise) writeControl(data byte) {
	n.lengthEnabled = data&0x20 == 0
	n.envelope.writeControl(data)
}

func (n *noise) writePeriod(data byte) {
	n.mode = data&0x80 != 0
	n.timerPeriod = noiseTable[data&0x0F]
}

func (n *noise) writeLength(data byte) {
	if n.enabled {
		n.lengthValue = lengthTable[data>>3]
	}
	n.envelope.start = true
}

func (n *noise) stepTimer() {
	if n.timerValue > 0 {
		n.timerValue--
		return
	}
	n.timerValue = n.timerPeriod
	shift := 1
	if n.mode {
		shift = 6
	}
	b1 := n.shiftRegister & 1
	b2 := (n.shiftRegister >> shift) & 1
	n.shiftRegister >>= 1
	n.shiftRegister |= (b1 ^ b2) << 14
}

func (n *noise) stepEnvelope() {
	n.envelope.step()
}

func (n *noise) stepLength() {
	if n.lengthEnabled && n.lengthValue > 0 {
		n.lengthValue--
	}
}

func (n *noise) output() byte {
	if !n.enabled || n.lengthValue == 0 || n.shiftRegister&1 == 1 {
		return 0
	}
	return n.envelope.output()
}
