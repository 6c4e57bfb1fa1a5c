// Package menudex provides an embedded Go client for the menudex semantic
// food catalog. It wires the catalog, indexer and search services
// in-process over an in-memory or Redis/Valkey-backed vector store:
//
//	client, _ := menudex.New(ctx,
//	    menudex.WithMemory(1536),
//	    menudex.WithOpenAI(os.Getenv("OPENAI_API_KEY"), "text-embedding-3-small", 1536),
//	)
//	defer client.Close()
//
//	item, _ := client.CreateItem(ctx, menudex.Item{
//	    Name:         "Roasted chicken breast",
//	    TextureLevel: 4,
//	})
//	hits, _ := client.Search(ctx, "soft high-protein dinner", 3)
package menudex
