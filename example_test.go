package tutorgraph_test

import (
	"context"
	"fmt"
	"log"

	"github.com/aretw0/tutorgraph"
	"github.com/aretw0/tutorgraph/internal/testutils"
	"github.com/aretw0/tutorgraph/pkg/domain"
	"github.com/aretw0/tutorgraph/pkg/pipeline"
)

// ExampleEngine_Run runs the enriched topology against a scripted provider.
func ExampleEngine_Run() {
	provider := testutils.NewScriptedProvider(
		testutils.Reply{Text: `{"is_specific": true, "clarification_question": "", "extracted_requirements": {"intent": "중복 찾기"}}`},
		testutils.Reply{Text: `{"queries": ["find duplicate number", "floyd cycle detection"], "rationale": "core ideas"}`},
	)

	eng, err := tutorgraph.New(provider)
	if err != nil {
		log.Fatal(err)
	}

	final, err := eng.Run(context.Background(), pipeline.Enriched,
		domain.NewState(domain.UserMessage("배열에서 중복된 숫자를 찾는 방법을 알려주세요")))
	if err != nil {
		log.Fatal(err)
	}

	fmt.Println(final.IsRequestValid)
	fmt.Println(final.UserIntent)
	fmt.Println(final.SearchQueries)
	fmt.Println(final.History)
	// Output:
	// true
	// 중복 찾기
	// [find duplicate number floyd cycle detection]
	// [validate_request generate_queries]
}

// ExampleEngine_Run_greeting shows that an empty conversation is greeted
// without calling the provider.
func ExampleEngine_Run_greeting() {
	provider := testutils.NewScriptedProvider()

	eng, err := tutorgraph.New(provider)
	if err != nil {
		log.Fatal(err)
	}

	final, err := eng.Run(context.Background(), pipeline.Tutoring, domain.NewState())
	if err != nil {
		log.Fatal(err)
	}

	fmt.Println(final.UserResponse != "")
	fmt.Println(len(provider.Calls()))
	// Output:
	// true
	// 0
}
