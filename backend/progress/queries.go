package progress

import "progresstracker/backend/models"

// TopicKey builds the "<phase>/<topic>/<depth>" key used in CompletedTopics.
func TopicKey(phase, topic string, depth models.Depth) string {
	return phase + "/" + topic + "/" + string(depth)
}

func IsTopicCompleted(p models.LearningProgress, phase, topic string, depth models.Depth) bool {
	_, ok := p.CompletedTopics[TopicKey(phase, topic, depth)]
	return ok
}

// DepthCompletion maps each depth of a topic to whether it is completed.
type DepthCompletion map[models.Depth]bool

// TopicDepthCompletion reports which depths of phase/topic are completed.
func TopicDepthCompletion(p models.LearningProgress, phase, topic string) DepthCompletion {
	out := make(DepthCompletion, len(models.Depths))
	for _, d := range models.Depths {
		out[d] = IsTopicCompleted(p, phase, topic, d)
	}
	return out
}

// TopicCompletionCount returns how many of the three depths are done.
func TopicCompletionCount(p models.LearningProgress, phase, topic string) int {
	n := 0
	for _, done := range TopicDepthCompletion(p, phase, topic) {
		if done {
			n++
		}
	}
	return n
}

// PathCompletion returns the completed share of a path with totalSteps
// steps as a percentage in [0, 100]. Unknown paths report 0.
func PathCompletion(p models.LearningProgress, pathID string, totalSteps int) float64 {
	pp, ok := p.PathProgress[pathID]
	if !ok || totalSteps <= 0 {
		return 0
	}
	done := 0
	for _, s := range pp.CompletedSteps {
		if s >= 0 && s < totalSteps {
			done++
		}
	}
	return float64(done) * 100 / float64(totalSteps)
}
