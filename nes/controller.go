package nes

// Reference:
//   http://hp.vector.co.jp/authors/VA042397/nes/joypad.html (In Japanese)
//   https://www.nesdev.org/wiki/Standard_controller

type button int

// Buttons in the order the shift register reports them, one bit per read.
const (
	ButtonA button = iota
	ButtonB
	ButtonSelect
	ButtonStart
	ButtonUp
	ButtonDown
	ButtonLeft
	ButtonRight
)

// Controller is a standard joypad, a parallel-in serial-out shift register.
type Controller struct {
	buttons [8]bool
	index   byte
	strobe  bool
}

func NewController() *Controller {
	return &Controller{}
}

// Set latches the pressed state of all 8 buttons, indexed by the Button constants.
func (c *Controller) Set(buttons [8]bool) {
	c.buttons = buttons
}

// Bits packs the buttons into a byte, A in bit 0.
func (c *Controller) Bits() byte {
	var b byte
	for i, pressed := range c.buttons {
		if pressed {
			b |= 1 << i
		}
	}
	return b
}

// read shifts out the next button. After all 8 the official pad keeps returning 1.
func (c *Controller) read() byte {
	if c.strobe {
		c.index = 0
	}
	if c.index >= 8 {
		return 1
	}
	var ret byte
	if c.buttons[c.index] {
		ret = 1
	}
	c.index++
	return ret
}

// write writes strobe.
// - strobe bit on - controller reports only status of the button A on every read
// - strobe bit off - controller cycles through all buttons
func (c *Controller) write(data byte) {
	c.strobe = data&1 == 1
	if c.strobe {
		c.index = 0
	}
}
