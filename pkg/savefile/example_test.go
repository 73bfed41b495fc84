package savefile_test

import (
	"fmt"

	"github.com/matzehuels/blokdust/pkg/blocks"
	"github.com/matzehuels/blokdust/pkg/savefile"
)

func ExampleDeserialize() {
	c := blocks.NewComposition()
	tone := blocks.NewBlock(c.Graph.NextID(), blocks.KindTone, blocks.Point{})
	_ = c.Graph.Add(tone)
	delay := blocks.NewBlock(c.Graph.NextID(), blocks.KindDelay, blocks.Point{X: 3})
	delay.ZIndex = 1
	_ = c.Graph.Add(delay)
	_ = c.Graph.Connect(tone.ID, delay.ID)
	c.Session.ZoomLevel = 2

	data, _ := savefile.Serialize(c)
	res, err := savefile.Deserialize(data)
	if err != nil {
		fmt.Println(err)
		return
	}

	for _, b := range res.Blocks {
		fmt.Println(b.ID, b.Kind, b.Connections)
	}
	fmt.Println("zoom:", res.Composition.Session.ZoomLevel)
	// Output:
	// 1 tone [2]
	// 2 delay []
	// zoom: 2
}
