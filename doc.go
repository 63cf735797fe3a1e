// Package semseo provides semantic SEO primitives and a Go client for the
// semseo page index backed by Redis 8 with the query engine.
//
// # Core algorithms
//
// The pure functions need no database:
//
//	sim, _ := semseo.CosineSimilarity(a, b)
//	gaps, _ := semseo.GapScores(queries, contents)
//	fused, _ := semseo.Fuse(lexical, vector, 0.5, 0.5, 10)
//
// # Client
//
// The client indexes pages and runs hybrid search against Redis:
//
//	client, _ := semseo.New(
//		semseo.WithRedis("localhost:6379", ""),
//		semseo.WithEmbedder(myEmbedder),
//		semseo.WithVectorDimensions(384),
//	)
//	defer client.Close()
//
//	_ = client.EnsureIndex(ctx)
//	_, _ = client.UpsertPage(ctx, semseo.Page{URL: "https://example.com/a", Content: "..."})
//	hits, _ := client.Search(ctx, "sourdough starter", semseo.SearchOptions{Limit: 5})
package semseo
