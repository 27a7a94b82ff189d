// Package io reads and writes distilled results as structured documents.
//
// # Overview
//
// A [analyzer.Result] serializes to JSON or TOML with the same field names:
//
//	{
//	  "rootPath": "/src/App.sln",
//	  "projects": [
//	    {
//	      "name": "App",
//	      "targetFrameworks": [
//	        {
//	          "name": "net8.0",
//	          "dependencies": [
//	            {"name": "Newtonsoft.Json", "version": "13.0.1"}
//	          ]
//	        }
//	      ]
//	    }
//	  ],
//	  "allDependencies": ["App", "Newtonsoft.Json 13.0.1", "net8.0"]
//	}
//
// # Absent Fields
//
// Collections that are absent in the result are omitted entirely, never
// written as empty arrays. Downstream tools may rely on this: a framework
// without a "dependencies" key had nothing survive filtering. Sets
// ("libraryList", "allDependencies") are written sorted so repeated runs
// produce identical documents.
//
// # Import
//
// Use [ImportJSON] to read a saved result from a file path, or [ReadJSON] to
// read from any io.Reader. Presence survives the round trip: a missing key
// decodes to an absent collection.
//
//	res, err := io.ImportJSON("result.json")
//
// # Export
//
// Use [ExportJSON] or [WriteJSON] for JSON and [ExportTOML] or [WriteTOML]
// for TOML. The TOML writer builds its document from the presence flags
// rather than relying on the encoder to drop empty values.
package io
