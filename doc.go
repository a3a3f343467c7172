/*
Package tutorgraph is a stateful execution graph for a coding-tutor chat pipeline.

One learner utterance flows through a small graph of processing stages. Each
stage may call an external reasoning provider, and returns a partial update
that is merged into a shared conversation state through a static table of
per-field reducers. Conditional edges route on that state until the END marker.

# Topologies

Three graphs are compiled at startup and selected by name:

  - validation: validate_request only.
  - enriched: validate_request, then generate_queries when the request is specific enough.
  - tutoring: tutor_response only. With no user message it greets without calling the provider.

# Usage

	provider, err := openai.NewFromAPIKey(os.Getenv("GEMINI_API_KEY"), "", config.DefaultModel)
	if err != nil {
		log.Fatal(err)
	}

	eng, err := tutorgraph.New(provider)
	if err != nil {
		log.Fatal(err)
	}

	final, err := eng.Run(ctx, pipeline.Enriched, domain.NewState(domain.UserMessage("배열에서 중복된 숫자를 찾는 방법을 알려주세요")))
	if err != nil {
		log.Fatal(err)
	}
	if final.Error != nil {
		log.Printf("failed at %s: %s", final.Error.Stage, final.Error.Message)
	}
	fmt.Println(final.SearchQueries)

Failures never surface as Go errors from Run: a stage that exhausts its
retries, returns malformed output or panics is recorded in the state's Error
field and stops the run. Callers map that to a fixed apology (see package chat).
*/
package tutorgraph
