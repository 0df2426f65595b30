// Package config provides configuration parsing for dragd.
//
// The configuration is stored in dragd.json, by default in the working
// directory. Every field is optional; missing values get defaults.
//
// # Configuration File Structure
//
//	{
//	  "server": {
//	    "address": ":8080",
//	    "readBufferSize": 4096,
//	    "writeBufferSize": 4096,
//	    "readTimeout": "60s",
//	    "maxMessageSize": 65536,
//	    "moveRate": 120,
//	    "moveBurst": 60
//	  },
//	  "page": "board.html",
//	  "drag": {
//	    "draggable": ".card",
//	    "container": "body",
//	    "droppable": ".droppable",
//	    "deadZone": 3,
//	    "topZIndex": 9999
//	  },
//	  "journal": {
//	    "bucket": "drag-journal",
//	    "prefix": "drags",
//	    "region": "us-east-1",
//	    "endpoint": "http://localhost:9000",
//	    "pathStyle": true,
//	    "flushInterval": "30s"
//	  },
//	  "log": {
//	    "level": "info",
//	    "format": "text",
//	    "file": "/var/log/dragd/dragd.log",
//	    "maxSize": 100,
//	    "maxBackups": 5,
//	    "maxAge": 28,
//	    "compress": true
//	  }
//	}
//
// Journal records are only shipped to S3 when a bucket is set. Logs go to
// stderr, and also to a size-rotated JSON file when log.file is set.
package config
