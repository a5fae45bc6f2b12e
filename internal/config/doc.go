// Package config loads isomorph.yaml project configuration.
//
// Values come from three layers, later ones winning: built-in defaults,
// isomorph.yaml at the project root, and environment variables (optionally
// seeded from a .env file). CLI flags are applied on top by the caller.
//
// # Configuration File Structure
//
//	name: blog
//	server:
//	  host: localhost
//	  port: 3000
//	upstream: https://jsonplaceholder.typicode.com
//	document:
//	  title: Blog
//	  clientScript: /main.js
//	  manifest: public/manifest.json
//	prefetch:
//	  timeout: 5s
//	static:
//	  dir: public
//	  s3Bucket: ""
//	cache:
//	  redisURL: redis://localhost:6379/0
//	  ttl: 30s
//	log:
//	  level: info
//	  format: text
//	dev:
//	  reload: true
//	  watch: [app, public]
//
// # Environment
//
//	ISOMORPH_PORT, ISOMORPH_HOST, ISOMORPH_UPSTREAM, REDIS_URL,
//	ISOMORPH_S3_BUCKET, ISOMORPH_LOG_LEVEL
package config
