// Package software provides the reference CPU backend for the renderer.
//
// Render targets are plain RGBA8 pixel stores. The backend implements
// every renderer capability:
//
//   - BindContext remembers which target a color surface address renders to
//   - PullSurfaceData converts target pixels into the surface's guest format
//   - PushSurfaceData converts guest pixels back into the target
//   - Draw validates the index buffer in guest memory and records the
//     assembled primitives; there is no shader pipeline, so pixel content
//     comes from Target.Clear and Target.SetPixel
//
// Importing the package registers it as renderer.KindSoftware:
//
//	import _ "github.com/gogpu/gxm/backend/software"
//
//	be, _ := renderer.NewBackend(renderer.KindSoftware, mem)
package software
