// Package fonts registers the embedded Go font family and hands out faces
// sized in CSS pixels. Faces are not safe for concurrent use, so callers
// drawing in parallel ask for their own.
package fonts

import (
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gomedium"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/math/fixed"
)

const (
	FamilySans = "Go"
	FamilyMono = "Go Mono"

	WeightRegular = 400
	WeightMedium  = 500
	WeightBold    = 700
)

// Registry maps family names and generic aliases to parsed TrueType fonts.
type Registry struct {
	mu       sync.RWMutex
	families map[string]map[int]*truetype.Font
	files    map[string]map[int][]byte
	aliases  map[string]string
}

// File is the raw TrueType data of one registered face.
type File struct {
	Family string
	Weight int
	TTF    []byte
}

func NewRegistry() *Registry {
	return &Registry{
		families: map[string]map[int]*truetype.Font{},
		files:    map[string]map[int][]byte{},
		aliases:  map[string]string{},
	}
}

var (
	defaultOnce sync.Once
	defaultReg  *Registry
	defaultErr  error
)

// Default returns the shared registry holding the Go fonts.
func Default() (*Registry, error) {
	defaultOnce.Do(func() {
		r := NewRegistry()
		for _, f := range []struct {
			family string
			weight int
			ttf    []byte
		}{
			{FamilySans, WeightRegular, goregular.TTF},
			{FamilySans, WeightMedium, gomedium.TTF},
			{FamilySans, WeightBold, gobold.TTF},
			{FamilyMono, WeightRegular, gomono.TTF},
		} {
			if err := r.Register(f.family, f.weight, f.ttf); err != nil {
				defaultErr = err
				return
			}
		}
		r.Alias("sans-serif", FamilySans)
		r.Alias("system-ui", FamilySans)
		r.Alias("monospace", FamilyMono)
		defaultReg = r
	})
	return defaultReg, defaultErr
}

func (r *Registry) Register(family string, weight int, ttf []byte) error {
	f, err := truetype.Parse(ttf)
	if err != nil {
		return fmt.Errorf("parse font %s %d: %w", family, weight, err)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	key := normalizeName(family)
	if r.families[key] == nil {
		r.families[key] = map[int]*truetype.Font{}
		r.files[key] = map[int][]byte{}
	}
	r.families[key][weight] = f
	r.files[key][weight] = ttf
	return nil
}

// Files returns the faces of a family ordered by weight, or nil when the
// family is unknown.
func (r *Registry) Files(family string) []File {
	r.mu.RLock()
	defer r.mu.RUnlock()
	key := r.lookup(family)
	var out []File
	for w, ttf := range r.files[key] {
		out = append(out, File{Family: key, Weight: w, TTF: ttf})
	}
	slices.SortFunc(out, func(a, b File) int { return a.Weight - b.Weight })
	return out
}

// Weight returns the registered weight of family that draws weight. Unknown
// families return weight unchanged.
func (r *Registry) Weight(family string, weight int) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if w, ok := nearest(r.families[r.lookup(family)], weight); ok {
		return w
	}
	return weight
}

// lookup requires r.mu held.
func (r *Registry) lookup(family string) string {
	key := normalizeName(family)
	if target, ok := r.aliases[key]; ok {
		return target
	}
	return key
}

// Alias makes name resolve to an already registered family.
func (r *Registry) Alias(name, family string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.aliases[normalizeName(name)] = normalizeName(family)
}

// Resolve walks a CSS font stack and returns the first available family.
func (r *Registry) Resolve(stack string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, name := range strings.Split(stack, ",") {
		key := r.lookup(name)
		if _, ok := r.families[key]; ok {
			return key, true
		}
	}
	return "", false
}

// font picks the closest registered weight.
func (r *Registry) font(family string, weight int) (*truetype.Font, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	weights, ok := r.families[r.lookup(family)]
	if !ok {
		return nil, fmt.Errorf("font family %q is not registered", family)
	}
	w, _ := nearest(weights, weight)
	return weights[w], nil
}

// nearest prefers the lighter weight on ties.
func nearest(weights map[int]*truetype.Font, weight int) (int, bool) {
	best, bestDist := 0, -1
	for w := range weights {
		d := w - weight
		if d < 0 {
			d = -d
		}
		if bestDist < 0 || d < bestDist || (d == bestDist && w < best) {
			best, bestDist = w, d
		}
	}
	return best, bestDist >= 0
}

// NewFace returns a fresh face whose units are pixels at the given size.
func (r *Registry) NewFace(family string, weight int, sizePx float64) (font.Face, error) {
	f, err := r.font(family, weight)
	if err != nil {
		return nil, err
	}
	return truetype.NewFace(f, &truetype.Options{
		Size:    sizePx,
		DPI:     72,
		Hinting: font.HintingNone,
	}), nil
}

// Faces caches faces for one goroutine.
type Faces struct {
	reg   *Registry
	scale float64
	cache map[faceKey]font.Face
}

type faceKey struct {
	family string
	weight int
	size   float64
}

// NewFaces returns a cache whose faces are scaled by scale, so text laid out
// in CSS pixels can be drawn on a larger canvas.
func (r *Registry) NewFaces(scale float64) *Faces {
	if scale <= 0 {
		scale = 1
	}
	return &Faces{reg: r, scale: scale, cache: map[faceKey]font.Face{}}
}

func (f *Faces) Face(family string, weight int, sizePx float64) (font.Face, error) {
	key := faceKey{family, weight, sizePx}
	if face, ok := f.cache[key]; ok {
		return face, nil
	}
	face, err := f.reg.NewFace(family, weight, sizePx*f.scale)
	if err != nil {
		return nil, err
	}
	f.cache[key] = face
	return face, nil
}

// Measure returns the advance width of s in unscaled pixels.
func (f *Faces) Measure(family string, weight int, sizePx float64, s string) (float64, error) {
	face, err := f.Face(family, weight, sizePx)
	if err != nil {
		return 0, err
	}
	return fixedToFloat(font.MeasureString(face, s)) / f.scale, nil
}

// Close releases every cached face.
func (f *Faces) Close() {
	for k, face := range f.cache {
		face.Close()
		delete(f.cache, k)
	}
}

func fixedToFloat(v fixed.Int26_6) float64 {
	return float64(v) / 64
}

func normalizeName(name string) string {
	name = strings.TrimSpace(name)
	name = strings.Trim(name, `"'`)
	return strings.ToLower(name)
}
