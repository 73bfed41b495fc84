// Package savefile converts compositions to and from their persisted JSON form.
//
// # Format
//
// A save file is a JSON object:
//
//	{
//	  "Version": 2,
//	  "Composition": [
//	    {"Id": 1, "Type": "tone", "ZIndex": 0, "Position": {"x": 0, "y": 0},
//	     "Params": {"frequency": 440},
//	     "Connections": [{"Id": 2, "Type": "delay", "ZIndex": 1, ...}]},
//	    {"Ref": 2}
//	  ],
//	  "ZoomLevel": 1,
//	  "DragOffset": {"x": 0, "y": 0},
//	  "ColorThemeNo": 0
//	}
//
// Composition lists every block at the top level in ZIndex order, with each
// block's downstream blocks nested under Connections. A block is written in
// full at its first occurrence; every later occurrence, at the top level or
// nested, is a {"Ref": id} stub. Shared and cyclic connections therefore
// serialize to a finite document.
//
// # Reading
//
// [Deserialize] works in two phases. It first collects every descriptor and
// checks that ids are positive and unique, kinds are known and every Ref
// resolves. Only then does it build a fresh graph: the reachable blocks are
// flattened with a visited set (each block once, however often it is
// referenced), sorted by ZIndex and connected. Any failure returns an error
// wrapping [ErrFormat] and no partial graph.
//
// Older files are accepted:
//   - Version 1 files repeat shared blocks in full instead of using Ref
//     stubs; later copies are ignored in favor of the first.
//   - Missing Version means 1; missing ZoomLevel means 1; missing
//     DragOffset means the origin; missing ColorThemeNo means theme 0.
//   - Missing Params fall back to the kind's defaults.
//   - Unknown fields are ignored.
package savefile
