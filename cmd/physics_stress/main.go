// Stress test timing the all-pairs motion test against object count
package main

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"os"
	"strconv"
	"strings"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"physical/internal/physics"
	"physical/internal/scene"
)

func main() {
	counts := flag.String("counts", "100,500,1000,2000,5000", "comma separated object counts")
	primitive := flag.Bool("primitive", false, "register meshes with Primitive detail")
	out := flag.String("out", "", "write the largest generated scene to this file")
	flag.Parse()

	var testCounts []int
	for _, field := range strings.Split(*counts, ",") {
		n, err := strconv.Atoi(strings.TrimSpace(field))
		if err != nil || n < 2 {
			fmt.Fprintf(os.Stderr, "bad count %q\n", field)
			os.Exit(2)
		}
		testCounts = append(testCounts, n)
	}

	var largest *scene.SceneFile
	for _, count := range testCounts {
		sf := generate(count, *primitive)
		testMotion(sf)
		largest = sf
	}

	if *out != "" && largest != nil {
		if err := scene.Write(*out, largest); err != nil {
			fmt.Fprintf(os.Stderr, "write scene: %v\n", err)
			os.Exit(1)
		}
	}
}

// generate scatters boxes and small meshes in a cube whose size grows with
// count to keep density reasonable.
func generate(count int, primitive bool) *scene.SceneFile {
	rng := rand.New(rand.NewSource(42)) // Consistent results
	spawnSize := float32(50.0) + float32(count)/100.0
	detail := ""
	if primitive {
		detail = "primitive"
	}

	sf := &scene.SceneFile{Objects: make([]scene.ObjectDef, count)}
	for i := range sf.Objects {
		pos := [3]float32{
			rng.Float32()*spawnSize - spawnSize/2,
			rng.Float32()*spawnSize - spawnSize/2,
			rng.Float32()*spawnSize - spawnSize/2,
		}
		def := scene.ObjectDef{Name: fmt.Sprintf("obj%d", i), Position: pos}
		if i%2 == 0 {
			s := 0.5 + rng.Float32()
			def.Shape = scene.ShapeDef{Type: "box", Size: [3]float32{s, s, s}}
		} else {
			def.Detail = detail
			def.Shape = scene.ShapeDef{Type: "mesh", Vertices: tetrahedron(0.5 + rng.Float32()*0.5)}
		}
		sf.Objects[i] = def
	}
	return sf
}

func tetrahedron(s float32) []float32 {
	a := []float32{0, 0, 0}
	b := []float32{s, 0, 0}
	c := []float32{0, s, 0}
	d := []float32{0, 0, s}
	var out []float32
	for _, tri := range [][3][]float32{{a, b, c}, {a, b, d}, {a, c, d}, {b, c, d}} {
		for _, v := range tri {
			out = append(out, v...)
		}
	}
	return out
}

func testMotion(sf *scene.SceneFile) {
	engine := physics.NewEngine(physics.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	loader := scene.NewLoader(engine, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err := loader.Load(sf); err != nil {
		fmt.Printf("%5d objects: LOAD ERROR: %v\n", len(sf.Objects), err)
		return
	}
	ids := loader.Loaded()

	// Warm up
	delta := rl.Vector3{X: 0.1}
	engine.TestTranslation(ids[0], &delta)

	start := time.Now()
	blocked := 0
	for _, id := range ids {
		delta := rl.Vector3{X: 0.1}
		res, err := engine.TestTranslation(id, &delta)
		if err != nil {
			fmt.Printf("%5d objects: TEST ERROR: %v\n", len(ids), err)
			return
		}
		if res.Blocked() {
			blocked++
		}
	}
	elapsed := time.Since(start)
	perTest := elapsed / time.Duration(len(ids))

	fmt.Printf("%5d objects: %10v total | %8v per test | %5d blocked\n",
		len(ids), elapsed.Round(time.Microsecond), perTest.Round(time.Nanosecond), blocked)
}
