// Package searchgate provides a Go client for the searchgate service: comment
// search, feature toggles and the search weighting settings.
//
// # Client
//
//	client, _ := searchgate.New("https://search.example.com",
//	    searchgate.WithAPIKey(os.Getenv("SEARCHGATE_API_KEY")),
//	)
//	hits, _ := client.SearchComments(ctx, "shipping")
//	_, _ = client.SetFeature(ctx, "comments", true)
//
// # Weighting editor
//
// Editor keeps a draft of the weighting settings next to the last saved
// copy and submits the draft as one request:
//
//	ed, _ := searchgate.LoadEditor(ctx, client,
//	    searchgate.WithNotifier(func(n searchgate.Notice) { log.Println(n.Message) }),
//	)
//	ed.ChangeMetaMode(true)
//	ed.ChangePostType("post", searchgate.Fields{
//	    "post_title": {Enabled: true, Weight: 3},
//	})
//	if ed.IsChanged() {
//	    _ = ed.Submit(ctx)
//	}
package searchgate
