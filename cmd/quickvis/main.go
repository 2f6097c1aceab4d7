package main

import (
	"flag"
	"fmt"
	"os"
	"runtime/debug"
	"strings"

	"github.com/gdamore/tcell/v2"

	"github.com/kyokaz/quickvis-go/common"
	"github.com/kyokaz/quickvis-go/engine"
	"github.com/kyokaz/quickvis-go/engine/binding"
	"github.com/kyokaz/quickvis-go/engine/object"
	"github.com/kyokaz/quickvis-go/engine/scene"
)

var (
	sceneFlag   = flag.String("scene", "", "Scene file to load (YAML); saved back with 's'")
	profileFlag = flag.Bool("profile", false, "Log update/evaluation statistics")
)

// app holds the panel state: the engine plus the cursor position and the
// pending binding settings the next bind will use.
type app struct {
	screen tcell.Screen
	eng    engine.Engine

	cursor int // index into the sorted object list

	// Pending binding settings, edited in place before binding.
	propName       string
	propKind       common.ValueKind
	sourceKind     binding.SourceKind
	defaultVisible bool
	visibleValue   int64

	// existingIdx cycles through scene empties when the source kind is
	// SourceExistingEmpty.
	existingIdx int

	editing bool // property name edit mode
	status  string
}

func main() {
	// Panic recovery: restore the terminal before printing the trace, or the
	// output is unreadable in raw mode.
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "\nquickvis crashed: %v\n", r)
			fmt.Fprintf(os.Stderr, "Stack Trace:\n%s\n", debug.Stack())
			os.Exit(1)
		}
	}()

	flag.Parse()

	eng := engine.NewEngine(engine.WithProfiling(*profileFlag))
	if *sceneFlag != "" {
		if err := eng.LoadScene(*sceneFlag); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to load scene %q: %v\n", *sceneFlag, err)
			os.Exit(1)
		}
	} else {
		seedScene(eng.Scene())
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create screen: %v\n", err)
		os.Exit(1)
	}
	if err := screen.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize screen: %v\n", err)
		os.Exit(1)
	}
	defer screen.Fini()
	screen.SetStyle(tcell.StyleDefault)

	a := &app{
		screen:         screen,
		eng:            eng,
		propName:       "visible",
		propKind:       common.ValueKindBool,
		sourceKind:     binding.SourceSelf,
		defaultVisible: true,
		visibleValue:   1,
		status:         "j/k move  b bind  u unbind  r reverse  R reverse all  1-9 swap  q quit",
	}

	eng.Start()
	defer eng.Quit()

	a.loop()
}

// seedScene fills an empty startup scene with a few placeholder objects so the
// panel has something to bind.
func seedScene(s scene.Scene) {
	s.Add(object.NewObject(object.WithName("Cube"), object.WithKind(object.KindMesh)))
	s.Add(object.NewObject(object.WithName("Sphere"), object.WithKind(object.KindMesh)))
	s.Add(object.NewObject(object.WithName("Suzanne"), object.WithKind(object.KindMesh)))
	s.Add(object.NewObject(object.WithName("Lamp"), object.WithKind(object.KindLight)))
}

func (a *app) loop() {
	for {
		a.draw()
		ev := a.screen.PollEvent()
		switch ev := ev.(type) {
		case *tcell.EventResize:
			a.screen.Sync()
		case *tcell.EventKey:
			if a.editing {
				a.handleEditKey(ev)
				continue
			}
			if !a.handleKey(ev) {
				return
			}
		}
	}
}

// handleEditKey consumes keys while the property name field is being edited.
func (a *app) handleEditKey(ev *tcell.EventKey) {
	switch ev.Key() {
	case tcell.KeyEnter, tcell.KeyEscape:
		a.editing = false
		if a.propName == "" {
			a.propName = "visible"
		}
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		if len(a.propName) > 0 {
			a.propName = a.propName[:len(a.propName)-1]
		}
	case tcell.KeyRune:
		r := ev.Rune()
		if r == ' ' {
			r = '_'
		}
		a.propName += string(r)
	}
}

// handleKey processes one normal-mode key. Returns false to quit.
func (a *app) handleKey(ev *tcell.EventKey) bool {
	if ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC {
		return false
	}
	if ev.Key() != tcell.KeyRune {
		return true
	}

	objects := a.objects()
	var selected object.Object
	if a.cursor >= 0 && a.cursor < len(objects) {
		selected = objects[a.cursor]
	}

	switch ev.Rune() {
	case 'q':
		return false
	case 'j':
		if a.cursor < len(objects)-1 {
			a.cursor++
		}
	case 'k':
		if a.cursor > 0 {
			a.cursor--
		}
	case 'p':
		a.editing = true
	case 't':
		if a.propKind == common.ValueKindBool {
			a.propKind = common.ValueKindInt
		} else {
			a.propKind = common.ValueKindBool
		}
	case 'n':
		a.sourceKind = (a.sourceKind + 1) % 3
	case 'v':
		a.defaultVisible = !a.defaultVisible
		a.visibleValue = 1 - a.visibleValue
	case 'e':
		a.existingIdx++
	case 'b':
		a.bind(selected)
	case 'u':
		if selected == nil {
			break
		}
		if a.eng.Bindings().Unbind(selected) {
			a.status = fmt.Sprintf("Removed visibility drivers from %q", selected.Name())
		} else {
			a.status = fmt.Sprintf("%q has no visibility drivers", selected.Name())
		}
	case 'r':
		if selected == nil {
			break
		}
		if err := a.eng.Bindings().ReverseObject(selected); err != nil {
			a.status = err.Error()
		} else {
			a.status = fmt.Sprintf("Reversed visibility logic on %q", selected.Name())
		}
	case 'R':
		if selected == nil {
			break
		}
		affected, err := a.eng.Bindings().ReverseConnected(selected)
		if err != nil {
			a.status = err.Error()
		} else {
			a.status = fmt.Sprintf("Reversed visibility of %d connected object(s)", affected)
		}
	case 'x':
		a.removeProperty(selected)
	case 's':
		a.save()
	case '1', '2', '3', '4', '5', '6', '7', '8', '9':
		if selected == nil {
			break
		}
		index := int(ev.Rune() - '1')
		if err := a.eng.Bindings().SwapActiveValue(selected, index); err != nil {
			a.status = err.Error()
		} else {
			a.status = fmt.Sprintf("Swapped %q to value slot %d", selected.Name(), index+1)
		}
	}
	return true
}

func (a *app) bind(selected object.Object) {
	if selected == nil {
		a.status = "Nothing selected"
		return
	}

	var source object.Object
	if a.sourceKind == binding.SourceExistingEmpty {
		source = a.existingHolder()
		if source == nil {
			a.status = "No other object available as an existing holder"
			return
		}
	}

	b, err := a.eng.Bindings().CreateBinding(selected, a.sourceKind, source,
		binding.WithPropertyName(a.propName),
		binding.WithPropertyKind(a.propKind),
		binding.WithDefaultVisible(a.defaultVisible),
		binding.WithVisibleValue(a.visibleValue),
	)
	if err != nil {
		a.status = err.Error()
		return
	}
	holder := a.eng.Scene().Get(b.SourceID)
	a.status = fmt.Sprintf("Bound %q to %q on %q", selected.Name(), b.Property, holder.Name())
}

func (a *app) removeProperty(selected object.Object) {
	if selected == nil {
		return
	}
	if err := a.eng.Bindings().RemoveProperty(selected, a.propName); err != nil {
		a.status = err.Error()
		return
	}
	a.status = fmt.Sprintf("Removed property %q from %q", a.propName, selected.Name())
}

func (a *app) save() {
	if *sceneFlag == "" {
		a.status = "No scene file given (-scene)"
		return
	}
	if err := a.eng.SaveScene(*sceneFlag); err != nil {
		a.status = err.Error()
		return
	}
	a.status = fmt.Sprintf("Saved scene to %s", *sceneFlag)
}

// objects returns the scene's objects in the list order the panel displays.
func (a *app) objects() []object.Object {
	return a.eng.Scene().Objects()
}

// existingHolder resolves the current pick for the existing-object source
// kind: cycles through the scene's objects skipping the cursor selection.
func (a *app) existingHolder() object.Object {
	objects := a.objects()
	var candidates []object.Object
	for i, obj := range objects {
		if i == a.cursor {
			continue
		}
		candidates = append(candidates, obj)
	}
	if len(candidates) == 0 {
		return nil
	}
	return candidates[a.existingIdx%len(candidates)]
}

func (a *app) draw() {
	s := a.screen
	s.Clear()

	base := tcell.StyleDefault
	header := base.Bold(true)
	selected := base.Reverse(true)
	dim := base.Dim(true)

	drawText(s, 0, 0, header, "QuickVis — object visibility bindings")

	// Left column: object list with visibility markers.
	objects := a.objects()
	drawText(s, 0, 2, header, "Objects")
	for i, obj := range objects {
		style := base
		if i == a.cursor {
			style = selected
		}
		marker := " "
		if obj.HideViewport() {
			marker = "·"
		}
		slots := a.eng.Bindings().Slots(obj)
		tag := ""
		if len(slots) > 0 {
			tag = fmt.Sprintf(" [%d slot(s)]", len(slots))
		}
		drawText(s, 0, 3+i, style, fmt.Sprintf("%s %-24s %-7s%s", marker, obj.Name(), obj.Kind(), tag))
	}

	// Right column: pending binding settings.
	col := 44
	drawText(s, col, 2, header, "Binding settings")
	nameLine := fmt.Sprintf("p  property:  %s", a.propName)
	if a.editing {
		nameLine += "_"
	}
	drawText(s, col, 3, base, nameLine)
	drawText(s, col, 4, base, fmt.Sprintf("t  type:      %s", a.propKind))
	drawText(s, col, 5, base, fmt.Sprintf("n  location:  %s", a.sourceKind))
	if a.propKind == common.ValueKindBool {
		drawText(s, col, 6, base, fmt.Sprintf("v  visible by default: %t", a.defaultVisible))
	} else {
		drawText(s, col, 6, base, fmt.Sprintf("v  visible at value:   %d", a.visibleValue))
	}
	if a.sourceKind == binding.SourceExistingEmpty {
		holderName := "(none)"
		if holder := a.existingHolder(); holder != nil {
			holderName = holder.Name()
		}
		drawText(s, col, 7, base, fmt.Sprintf("e  holder:    %s", holderName))
	}

	// Selection details: slots driven by it and sources driving it.
	row := 9
	if a.cursor >= 0 && a.cursor < len(objects) {
		obj := objects[a.cursor]

		slots := a.eng.Bindings().Slots(obj)
		if len(slots) > 0 {
			drawText(s, col, row, header, fmt.Sprintf("Driver Control — %s", obj.Name()))
			row++
			for i, b := range slots {
				driven := a.eng.Scene().Get(b.DrivenID)
				name := "(missing)"
				if driven != nil {
					name = driven.Name()
				}
				drawText(s, col, row, base, fmt.Sprintf("%d  %-20s %s = %s", i+1, name, b.Property, b.VisibleValue))
				row++
			}
			row++
		}

		refs := a.eng.Bindings().DrivingSources(obj)
		if len(refs) > 0 {
			drawText(s, col, row, header, "Driven by")
			row++
			for _, ref := range refs {
				drawText(s, col, row, base, fmt.Sprintf("   %s[%q]", ref.SourceName, ref.Property))
				row++
			}
		}
	}

	_, height := s.Size()
	drawText(s, 0, height-1, dim, a.status)
	s.Show()
}

// drawText writes a string starting at (x, y), clipping at the screen edge.
func drawText(s tcell.Screen, x, y int, style tcell.Style, text string) {
	width, height := s.Size()
	if y < 0 || y >= height {
		return
	}
	for i, r := range []rune(strings.TrimRight(text, "\n")) {
		if x+i >= width {
			return
		}
		s.SetContent(x+i, y, r, nil, style)
	}
}
