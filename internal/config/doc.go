// Package config loads vango-use configuration.
//
// The configuration lives in vango-use.json or vango-use.toml at the
// project root. When both exist the JSON file wins.
//
// # Configuration File Structure
//
//	{
//	  "name": "my-app",
//	  "log": {"level": "debug", "format": "json"},
//	  "runtime": {"queueSize": 1024, "debug": true},
//	  "storage": {
//	    "backend": "s3",
//	    "s3": {"bucket": "prefs", "prefix": "users/42/", "region": "us-east-1"}
//	  },
//	  "breakpoints": {"preset": "tailwind"},
//	  "devtools": {"addr": "localhost:7070", "echo": true},
//	  "metrics": {"namespace": "vango_use"}
//	}
//
// The TOML form uses the same keys:
//
//	[storage]
//	backend = "file"
//
//	[storage.file]
//	path = ".vango/local.json"
//
// # Usage
//
//	cfg, err := config.Load(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	fmt.Println("Devtools:", cfg.Devtools.Addr)
package config
