package term

import (
	"context"
	"math"
	"strings"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"

	"wintergreet/internal/audio"
	"wintergreet/internal/config"
	"wintergreet/internal/gift"
	"wintergreet/internal/scene"
	"wintergreet/pkg/realtime"
)

const (
	// cellWidthPx converts terminal columns into the pixel widths the light tiers expect.
	cellWidthPx = 8
	lightRows   = 4
	frameRate   = 50 * time.Millisecond
)

// Sound is the audio collaborator: a blocked-until-allowed start and a short cue.
type Sound interface {
	Start() error
	Ring()
}

type giftBox struct {
	id     int
	x0, x1 int
	y      int
}

type modalBox struct {
	x0, y0, x1, y1 int
	ackX0, ackX1   int
	ackY           int
}

// Viewer draws the scene on a terminal and feeds mouse and keyboard input to
// the gift controller.
type Viewer struct {
	screen tcell.Screen
	cfg    *config.Config
	sound  Sound
	gate   *audio.Gate

	snow     *scene.Field
	stars    *scene.Field
	strand   *scene.Strand
	viewport *realtime.Broadcaster[int]
	stop     func()

	inline *gift.Inline
	modal  *gift.Modal

	width, height int
	start         time.Time
	gifts         []giftBox
	box           *modalBox
	// buttons is the mask from the previous mouse event; drags repeat it.
	buttons tcell.ButtonMask
}

// New builds the scene for the screen's current size. The screen must
// already be initialised.
func New(screen tcell.Screen, cfg *config.Config, sound Sound) *Viewer {
	w, h := screen.Size()
	v := &Viewer{
		screen:   screen,
		cfg:      cfg,
		sound:    sound,
		snow:     scene.NewField(cfg.Snow, nil),
		stars:    scene.NewField(cfg.Stars, nil),
		strand:   scene.NewStrand(cfg.Strand(), w*cellWidthPx, nil),
		viewport: realtime.NewBroadcaster[int](),
		width:    w,
		height:   h,
		start:    time.Now(),
	}
	v.stop = v.strand.Follow(v.viewport, nil)
	v.gate = audio.NewGate(sound.Start)
	switch cfg.GiftVariant() {
	case gift.VariantInline:
		v.inline = gift.NewInline(cfg.Gifts.Items, cfg.Gifts.ResetAfter)
	default:
		v.modal = gift.NewModal(cfg.Gifts.Items)
	}
	return v
}

// Close stops following resize signals and drops pending gift resets.
func (v *Viewer) Close() {
	v.stop()
	if v.inline != nil {
		v.inline.Close()
	}
}

// Run polls input and redraws until ctx ends or the user quits.
func (v *Viewer) Run(ctx context.Context) {
	defer v.Close()

	v.gate.Attempt()

	events := make(chan tcell.Event, 100)
	quit := make(chan struct{})
	defer close(quit)
	go func() {
		for {
			ev := v.screen.PollEvent()
			if ev == nil {
				return
			}
			select {
			case events <- ev:
			case <-quit:
				return
			}
		}
	}()

	ticker := time.NewTicker(frameRate)
	defer ticker.Stop()

	v.Draw(time.Now())
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-events:
			if !v.HandleEvent(ev, time.Now()) {
				return
			}
		case now := <-ticker.C:
			if v.inline != nil {
				v.inline.Advance(now)
			}
			v.Draw(now)
		}
	}
}

// HandleEvent applies one input event. It returns false when the user quits.
func (v *Viewer) HandleEvent(ev tcell.Event, now time.Time) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		v.gate.OnInput()
		return v.handleKey(ev)
	case *tcell.EventMouse:
		buttons := ev.Buttons()
		pressed := buttons&tcell.Button1 != 0 && v.buttons&tcell.Button1 == 0
		v.buttons = buttons
		if !pressed {
			return true
		}
		v.gate.OnInput()
		x, y := ev.Position()
		v.click(x, y, now)
	case *tcell.EventResize:
		v.width, v.height = ev.Size()
		v.screen.Sync()
		v.viewport.Publish(v.width * cellWidthPx)
	}
	return true
}

func (v *Viewer) handleKey(ev *tcell.EventKey) bool {
	selected := v.modal != nil && v.hasSelection()
	switch ev.Key() {
	case tcell.KeyCtrlC:
		return false
	case tcell.KeyEscape:
		if selected {
			v.modal.Press(gift.TargetOverlay)
			return true
		}
		return false
	case tcell.KeyEnter:
		if selected {
			v.modal.Press(gift.TargetAcknowledge)
		}
	case tcell.KeyRune:
		if ev.Modifiers()&tcell.ModCtrl != 0 && ev.Rune() == 'c' {
			return false
		}
		switch ev.Rune() {
		case 'q':
			return false
		case ' ':
			if selected {
				v.modal.Press(gift.TargetAcknowledge)
			}
		}
	}
	return true
}

func (v *Viewer) hasSelection() bool {
	_, ok := v.modal.Selected()
	return ok
}

func (v *Viewer) click(x, y int, now time.Time) {
	if v.modal != nil && v.hasSelection() && v.box != nil {
		b := v.box
		switch {
		case y == b.ackY && x >= b.ackX0 && x <= b.ackX1:
			v.modal.Press(gift.TargetAcknowledge)
		case x >= b.x0 && x <= b.x1 && y >= b.y0 && y <= b.y1:
			v.modal.Press(gift.TargetContent)
		default:
			v.modal.Press(gift.TargetOverlay)
		}
		return
	}
	for _, g := range v.gifts {
		if y != g.y || x < g.x0 || x > g.x1 {
			continue
		}
		if v.inline != nil {
			if changed, _ := v.inline.Click(g.id, now); changed {
				v.sound.Ring()
			}
			return
		}
		if err := v.modal.Select(g.id); err == nil {
			v.sound.Ring()
		}
		return
	}
}

// Draw renders one frame.
func (v *Viewer) Draw(now time.Time) {
	v.screen.Clear()
	elapsed := now.Sub(v.start).Seconds()
	v.drawStars(elapsed)
	v.drawLights(elapsed)
	v.drawSnow(elapsed)
	v.drawCard()
	v.drawGifts()
	v.drawModal()
	v.screen.Show()
}

func (v *Viewer) drawStars(elapsed float64) {
	skyRows := int(float64(v.height) * 0.6)
	for _, p := range v.stars.Particles() {
		x := col(p.X, v.width)
		y := int(p.Y / 100 * float64(skyRows))
		glow := 0.5 + 0.5*math.Sin(2*math.Pi*(elapsed+p.Delay)/p.Duration)
		ch := '·'
		if glow*p.Opacity > 0.5 {
			ch = '✦'
		}
		v.screen.SetContent(x, y, ch, nil, tcell.StyleDefault.Foreground(gray(0.4+0.6*glow*p.Opacity)))
	}
}

func (v *Viewer) drawLights(elapsed float64) {
	depth := v.cfg.Lights.Depth
	for _, l := range v.strand.Lights() {
		x := col(l.X, v.width)
		y := 0
		if depth > 0 {
			y = int(math.Round(l.Offset / depth * float64(lightRows-1)))
		}
		style := tcell.StyleDefault.Foreground(tcell.GetColor(l.Color))
		if math.Mod(elapsed+l.Delay, 1.5) > 0.75 {
			style = style.Dim(true)
		}
		v.screen.SetContent(x, y, '●', nil, style)
	}
}

func (v *Viewer) drawSnow(elapsed float64) {
	for _, p := range v.snow.Particles() {
		t := elapsed - p.Delay
		if t < 0 || p.Duration <= 0 {
			continue
		}
		phase := math.Mod(t, p.Duration) / p.Duration
		y := int(phase * float64(v.height))
		ch := '*'
		if p.Size > 1.25 {
			ch = '❄'
		}
		v.screen.SetContent(col(p.X, v.width), y, ch, nil, tcell.StyleDefault.Foreground(gray(p.Opacity)))
	}
}

func (v *Viewer) drawCard() {
	g := v.cfg.Greeting
	lines := append([]string{g.Icon + " " + g.Title, g.Subtitle, ""}, strings.Split(g.Message, "\n")...)
	top := v.height/2 - len(lines)/2
	for i, line := range lines {
		style := tcell.StyleDefault.Foreground(tcell.ColorWhite)
		if i == 0 {
			style = style.Bold(true).Foreground(tcell.ColorGold)
		}
		v.drawCentered(top+i, line, style)
	}
}

func (v *Viewer) drawGifts() {
	v.gifts = v.gifts[:0]
	var states []gift.ItemState
	if v.inline != nil {
		states = v.inline.Snapshot()
	} else {
		for _, it := range v.modal.Items() {
			states = append(states, gift.ItemState{Item: it})
		}
	}
	if len(states) == 0 {
		return
	}
	y := v.height - 3
	slot := v.width / len(states)
	for i, s := range states {
		label := "[" + s.Item.Icon + "]"
		style := tcell.StyleDefault.Foreground(tcell.ColorRed)
		if s.State == gift.Opened {
			label = s.Item.Reward.Icon + " " + s.Item.Reward.Message
			style = tcell.StyleDefault.Foreground(tcell.ColorGreen)
		}
		label = runewidth.Truncate(label, max(slot-1, 1), "…")
		w := runewidth.StringWidth(label)
		x := i*slot + (slot-w)/2
		v.drawText(x, y, label, style)
		v.gifts = append(v.gifts, giftBox{id: s.Item.ID, x0: x, x1: x + w - 1, y: y})
	}
}

func (v *Viewer) drawModal() {
	v.box = nil
	if v.modal == nil {
		return
	}
	it, ok := v.modal.Selected()
	if !ok {
		return
	}
	r := it.Reward
	lines := []string{}
	if r.Icon != "" {
		lines = append(lines, r.Icon)
	}
	if r.Title != "" {
		lines = append(lines, r.Title)
	}
	lines = append(lines, r.Message, "", "[ Thank you! ]")

	inner := 0
	for _, l := range lines {
		inner = max(inner, runewidth.StringWidth(l))
	}
	inner = min(inner+4, max(v.width-2, 1))
	x0 := (v.width - inner) / 2
	y0 := v.height/2 - len(lines)/2 - 1
	x1 := x0 + inner - 1
	y1 := y0 + len(lines) + 1

	bg := tcell.StyleDefault.Background(tcell.ColorWhite).Foreground(tcell.ColorBlack)
	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			v.screen.SetContent(x, y, ' ', nil, bg)
		}
	}
	for i, l := range lines {
		v.drawCentered(y0+1+i, l, bg)
	}
	ack := lines[len(lines)-1]
	aw := runewidth.StringWidth(ack)
	ackX := (v.width - aw) / 2
	v.box = &modalBox{x0: x0, y0: y0, x1: x1, y1: y1, ackX0: ackX, ackX1: ackX + aw - 1, ackY: y0 + len(lines)}
}

func (v *Viewer) drawCentered(y int, s string, style tcell.Style) {
	v.drawText((v.width-runewidth.StringWidth(s))/2, y, s, style)
}

func (v *Viewer) drawText(x, y int, s string, style tcell.Style) {
	for _, r := range s {
		v.screen.SetContent(x, y, r, nil, style)
		x += max(runewidth.RuneWidth(r), 1)
	}
}

func col(pct float64, width int) int {
	if width <= 1 {
		return 0
	}
	return int(math.Round(pct / 100 * float64(width-1)))
}

func gray(level float64) tcell.Color {
	c := int32(math.Max(0, math.Min(1, level)) * 255)
	return tcell.NewRGBColor(c, c, c)
}
