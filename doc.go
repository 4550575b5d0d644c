// Package glyphwave renders an animated, pixelated "binary glyph" background
// for [Ebitengine] hosts.
//
// The screen is divided into square cells. Every cell shows a 0 or a 1 whose
// choice comes from a procedural field that cycles through five scenes:
// water ripples, a honeycomb hive, voronoi cells, a spiral shell and wood
// rings. Each scene is held for [HoldTime] seconds and blends into the next
// over [TransitionTime]. The same scheduler runs on the host, so the UI can
// re-theme itself as scenes change.
//
// # Quick start
//
// [Run] opens a window and drives a [Hero] for you:
//
//	glyphwave.Run(glyphwave.RunConfig{
//		Title: "Glyphwave", Width: 1280, Height: 720,
//		Config: glyphwave.DefaultConfig(),
//	})
//
// To embed the background in an existing game, create a hero and call its
// Update and Draw from your own loop:
//
//	hero := glyphwave.NewHero(glyphwave.Options{Width: w, Height: h})
//	hero.OnScene(func(ev glyphwave.SceneEvent) { /* re-theme */ })
//	hero.Mount()
//	defer hero.Unmount()
//
// # Execution
//
// Initialisation waits for the first idle tick after the first Draw. When the
// platform offers a worker, the hero tries to render on a worker goroutine
// into an offscreen canvas and falls back to the main thread if that fails.
// [EbitenPlatform] draws the Kage shader on the main thread by default; its
// software worker is opted into with [WorkerOn]. When no surface can be
// built at all, the hero reports one error through OnError and draws
// nothing.
//
// Render parameters travel as [Message] values: init, update and stop go to
// the render thread; ready, error and sceneUpdate come back. Updates change
// uniforms only and never rebuild the program.
//
// # Headless use
//
// [RenderPoster] produces the static fallback image for a scene without a
// GPU, and [Timeline] scripts a [NewHeadlessHero] for visual checks. The
// wsbridge subpackage forwards scene events to web clients.
//
// [Ebitengine]: https://ebitengine.org
package glyphwave
