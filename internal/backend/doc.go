// Package backend defines the narrow capability surface projarc needs from an engineering-automation backend.
//
// A [Factory] creates isolated [Session] values, one per archive task. A session can open a project file,
// archive an opened project into a target directory, and close it again. Sessions are never shared or pooled.
//
// Backends are bound through a [Loader]. The [Registry] maps a backend name from configuration to a
// [Constructor] that receives the explicit [shared.BackendConfig]; no process-global binding state exists.
//
// # Bridge
//
// The built-in "bridge" backend drives an external bridge executable that hosts the vendor automation API.
// Each session starts one bridge process and talks to it with newline-delimited JSON:
//
//	→ {"id":1,"op":"open","path":"C:\\plant\\line.ap17"}
//	← {"id":1,"ok":true,"handle":"p1"}
//	→ {"id":2,"op":"archive","handle":"p1","target":"C:\\out","name":"line_20260101_0930.zap17","mode":"compressed"}
//	← {"id":2,"ok":false,"error":"disk full"}
//
// Closing stdin ends the bridge process.
package backend
