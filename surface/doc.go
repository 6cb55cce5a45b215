// Package surface synchronizes the runtime's renderable surface with host
// visibility.
//
// Visibility is orthogonal to lifecycle: hiding pauses and unfocuses the
// runtime but keeps it warm in memory for a fast re-show, while stopping
// and destruction stay the lifecycle adapter's job. Show and Hide are
// strictly paired so repeated cycles never leak surface attachments.
package surface
